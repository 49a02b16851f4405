package ops

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerq/ledgerq/ledgerq/storage"
	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlite"
)

func newTestDB(t *testing.T) (*sql.DB, storage.Adapter) {
	t.Helper()
	adapter := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	db, err := adapter.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := adapter.CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db, adapter
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	db        *sql.DB
	adapter   storage.Adapter
	brokerage *Account
	pension   *Account
}

// seedLedger loads a small portfolio: two accounts, three securities, and
// a year of trades in AAPL and GOLDETF.
func seedLedger(t *testing.T) *fixture {
	t.Helper()
	db, adapter := newTestDB(t)
	ctx := context.Background()

	brokerage, _, err := AddAccount(ctx, db, adapter, nil, "Brokerage", "Zerodha")
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	pension, _, err := AddAccount(ctx, db, adapter, nil, "Pension", "Vanguard")
	if err != nil {
		t.Fatalf("add account: %v", err)
	}

	securities := []Security{
		{Key: "AAPL", Name: "Apple Inc", Type: "stock", Category: "equity"},
		{Key: "GOLDETF", Name: "Gold Bees ETF", Type: "etf", Category: "commodity"},
		{Key: "TBOND", Name: "Treasury Bond", Type: "bond", Category: "debt"},
	}
	for _, s := range securities {
		if _, err := UpsertSecurity(ctx, db, adapter, nil, s); err != nil {
			t.Fatalf("upsert security %s: %v", s.Key, err)
		}
	}

	writes := []TransactionWrite{
		{Date: date(2024, 1, 10), Type: TransactionPurchase, Description: "initial apple buy",
			Amount: d("1000"), Units: d("10"), AccountID: brokerage.ID, SecurityKey: "AAPL"},
		{Date: date(2024, 3, 5), Type: TransactionPurchase, Description: "gold allocation",
			Amount: d("500"), Units: d("25"), AccountID: brokerage.ID, SecurityKey: "GOLDETF"},
		{Date: date(2024, 6, 20), Type: TransactionSale, Description: "apple trim",
			Amount: d("480"), Units: d("-4"), AccountID: brokerage.ID, SecurityKey: "AAPL"},
		{Date: date(2024, 9, 1), Type: TransactionPurchase, Description: "pension apple buy",
			Amount: d("550"), Units: d("5"), AccountID: pension.ID, SecurityKey: "AAPL"},
	}
	for _, w := range writes {
		if _, err := InsertTransaction(ctx, db, adapter, nil, w); err != nil {
			t.Fatalf("insert transaction: %v", err)
		}
	}

	return &fixture{db: db, adapter: adapter, brokerage: brokerage, pension: pension}
}

func (f *fixture) list(t *testing.T, queries ...string) []Transaction {
	t.Helper()
	txns, err := ListTransactions(context.Background(), f.db, f.adapter, nil,
		ListOptions{Queries: queries, Limit: 100})
	if err != nil {
		t.Fatalf("list %v: %v", queries, err)
	}
	return txns
}
