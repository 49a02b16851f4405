// Package ledgerq is the library entry point: a Ledger handle over one
// storage backend, exposing the record operations and the query language
// that filters them.
package ledgerq

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ledgerq/ledgerq/ledgerq/ops"
	"github.com/ledgerq/ledgerq/ledgerq/storage"
)

// DefaultLimit is the listing page size used when the caller does not
// choose one.
const DefaultLimit = 30

type Ledger struct {
	adapter storage.Adapter
	db      *sql.DB
	log     *zap.Logger
}

// Open connects the adapter and returns a ready handle. A nil logger
// disables logging.
func Open(ctx context.Context, adapter storage.Adapter, log *zap.Logger) (*Ledger, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{adapter: adapter, db: db, log: log}, nil
}

// Init creates the ledger schema. Safe to run on an existing database.
func (l *Ledger) Init(ctx context.Context) error {
	return l.adapter.CreateSchema(ctx, l.db)
}

func (l *Ledger) Close() error {
	err := l.db.Close()
	if cerr := l.adapter.Close(); err == nil {
		err = cerr
	}
	return err
}

// ListOptions re-exports the repository paging/filtering options.
type ListOptions = ops.ListOptions

func (l *Ledger) Transactions(ctx context.Context, opts ListOptions) ([]ops.Transaction, error) {
	return ops.ListTransactions(ctx, l.db, l.adapter, l.log, opts)
}

func (l *Ledger) CountTransactions(ctx context.Context, queries []string) (int64, error) {
	return ops.CountTransactions(ctx, l.db, l.adapter, l.log, queries)
}

func (l *Ledger) AddTransaction(ctx context.Context, w ops.TransactionWrite) (int64, error) {
	return ops.InsertTransaction(ctx, l.db, l.adapter, l.log, w)
}

func (l *Ledger) Transaction(ctx context.Context, id int64) (*ops.Transaction, error) {
	return ops.GetTransaction(ctx, l.db, l.adapter, id)
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	return ops.DeleteTransaction(ctx, l.db, l.adapter, id)
}

// CostBasis lists matching transactions in chronological order and
// assigns each sale its FIFO cost basis.
func (l *Ledger) CostBasis(ctx context.Context, queries []string) ([]ops.TransactionWithCost, error) {
	txns, err := ops.ListTransactionsAscending(ctx, l.db, l.adapter, l.log, queries)
	if err != nil {
		return nil, err
	}
	return ops.ComputeCostBasis(txns)
}

func (l *Ledger) Accounts(ctx context.Context, opts ListOptions) ([]ops.Account, error) {
	return ops.ListAccounts(ctx, l.db, l.adapter, l.log, opts)
}

func (l *Ledger) AddAccount(ctx context.Context, name, institution string) (*ops.Account, bool, error) {
	return ops.AddAccount(ctx, l.db, l.adapter, l.log, name, institution)
}

func (l *Ledger) Account(ctx context.Context, id int64) (*ops.Account, error) {
	return ops.GetAccount(ctx, l.db, l.adapter, id)
}

func (l *Ledger) DeleteAccount(ctx context.Context, id int64) (bool, error) {
	return ops.DeleteAccount(ctx, l.db, l.adapter, id)
}

func (l *Ledger) Securities(ctx context.Context, opts ListOptions) ([]ops.Security, error) {
	return ops.ListSecurities(ctx, l.db, l.adapter, l.log, opts)
}

func (l *Ledger) SetSecurity(ctx context.Context, s ops.Security) (bool, error) {
	return ops.UpsertSecurity(ctx, l.db, l.adapter, l.log, s)
}

func (l *Ledger) Security(ctx context.Context, key string) (*ops.Security, error) {
	return ops.GetSecurity(ctx, l.db, l.adapter, key)
}

func (l *Ledger) DeleteSecurity(ctx context.Context, key string) (bool, error) {
	return ops.DeleteSecurity(ctx, l.db, l.adapter, key)
}

func (l *Ledger) Prices(ctx context.Context, opts ListOptions) ([]ops.Price, error) {
	return ops.ListPrices(ctx, l.db, l.adapter, l.log, opts)
}

func (l *Ledger) SetPrice(ctx context.Context, p ops.Price) (bool, error) {
	return ops.UpsertPrice(ctx, l.db, l.adapter, l.log, p)
}

func (l *Ledger) Holdings(ctx context.Context, opts ListOptions) ([]ops.Holding, error) {
	return ops.ListHoldings(ctx, l.db, l.adapter, l.log, opts)
}
