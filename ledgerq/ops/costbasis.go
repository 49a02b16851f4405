package ops

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
)

// TransactionWithCost pairs a transaction with its cost basis. Cost is set
// on sales only: the original purchase cost of the units sold.
type TransactionWithCost struct {
	Transaction
	Cost *decimal.Decimal
}

type lot struct {
	units       decimal.Decimal
	costPerUnit decimal.Decimal
}

type lotKey struct {
	securityKey string
	accountID   int64
}

// ComputeCostBasis assigns a FIFO cost basis to every sale in the input.
// Transactions must be in chronological order; lots are tracked per
// account and security, and each sale consumes the oldest open lots
// first, splitting a lot when it is only partly sold. A sale with no
// remaining purchase units to draw from is an operation error.
func ComputeCostBasis(txns []Transaction) ([]TransactionWithCost, error) {
	lots := make(map[lotKey][]lot)
	out := make([]TransactionWithCost, 0, len(txns))

	for _, txn := range txns {
		key := lotKey{securityKey: txn.SecurityKey, accountID: txn.AccountID}

		switch txn.Type {
		case TransactionPurchase:
			if txn.Units.IsPositive() {
				lots[key] = append(lots[key], lot{
					units:       txn.Units,
					costPerUnit: txn.Amount.Div(txn.Units),
				})
			}
			out = append(out, TransactionWithCost{Transaction: txn})

		case TransactionSale:
			// Sales carry negative units.
			toSell := txn.Units.Neg()
			cost := decimal.Zero
			open := lots[key]
			for toSell.IsPositive() && len(open) > 0 {
				head := open[0]
				if head.units.LessThanOrEqual(toSell) {
					cost = cost.Add(head.units.Mul(head.costPerUnit))
					toSell = toSell.Sub(head.units)
					open = open[1:]
					continue
				}
				cost = cost.Add(toSell.Mul(head.costPerUnit))
				open[0].units = head.units.Sub(toSell)
				toSell = decimal.Zero
			}
			lots[key] = open
			if toSell.IsPositive() {
				return nil, errors.Newf(errors.CodeOperation,
					"insufficient purchase history for cost basis calculation: security %s, account %d",
					txn.SecurityKey, txn.AccountID)
			}
			rounded := cost.Round(2)
			out = append(out, TransactionWithCost{Transaction: txn, Cost: &rounded})

		default:
			out = append(out, TransactionWithCost{Transaction: txn})
		}
	}
	return out, nil
}
