package ops

import (
	"context"
	"testing"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
)

func TestAddAccountIsIdempotent(t *testing.T) {
	db, adapter := newTestDB(t)
	ctx := context.Background()

	first, created, err := AddAccount(ctx, db, adapter, nil, "Brokerage", "Zerodha")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first add should create")
	}

	again, created, err := AddAccount(ctx, db, adapter, nil, "Brokerage", "Zerodha")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("duplicate add should not create")
	}
	if again.ID != first.ID {
		t.Errorf("duplicate add returned id %d, want %d", again.ID, first.ID)
	}

	// Same name at a different institution is a distinct account.
	other, created, err := AddAccount(ctx, db, adapter, nil, "Brokerage", "Schwab")
	if err != nil {
		t.Fatal(err)
	}
	if !created || other.ID == first.ID {
		t.Errorf("created = %v, id = %d", created, other.ID)
	}
}

func TestAddAccountValidation(t *testing.T) {
	db, adapter := newTestDB(t)
	ctx := context.Background()

	if _, _, err := AddAccount(ctx, db, adapter, nil, "", "Zerodha"); !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Errorf("empty name: err = %v", err)
	}
	if _, _, err := AddAccount(ctx, db, adapter, nil, "Brokerage", ""); !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Errorf("empty institution: err = %v", err)
	}
}

func TestListAccountsQueries(t *testing.T) {
	f := seedLedger(t)
	ctx := context.Background()

	all, err := ListAccounts(ctx, f.db, f.adapter, nil, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d accounts, want 2", len(all))
	}

	matched, err := ListAccounts(ctx, f.db, f.adapter, nil,
		ListOptions{Queries: []string{"acct:vanguard"}, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].Name != "Pension" {
		t.Errorf("matched = %+v", matched)
	}

	// Keyword-less text lands on the account field for this entity.
	matched, err = ListAccounts(ctx, f.db, f.adapter, nil,
		ListOptions{Queries: []string{"broker"}, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].Name != "Brokerage" {
		t.Errorf("matched = %+v", matched)
	}

	n, err := CountAccounts(ctx, f.db, f.adapter, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestGetAccount(t *testing.T) {
	f := seedLedger(t)
	ctx := context.Background()

	got, err := GetAccount(ctx, f.db, f.adapter, f.brokerage.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Brokerage" || got.Institution != "Zerodha" {
		t.Errorf("got %+v", got)
	}

	if _, err := GetAccount(ctx, f.db, f.adapter, 9999); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("err = %v, want not_found", err)
	}
}

func TestDeleteAccountWithTransactionsFails(t *testing.T) {
	f := seedLedger(t)
	ctx := context.Background()

	if _, err := DeleteAccount(ctx, f.db, f.adapter, f.brokerage.ID); !errors.IsCode(err, errors.CodeSQL) {
		t.Errorf("delete referenced account: err = %v, want sql error from foreign key", err)
	}

	empty, _, err := AddAccount(ctx, f.db, f.adapter, nil, "Scratch", "Nowhere")
	if err != nil {
		t.Fatal(err)
	}
	deleted, err := DeleteAccount(ctx, f.db, f.adapter, empty.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Error("expected delete of unreferenced account")
	}
}
