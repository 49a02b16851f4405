package ops

import (
	"context"
	"testing"
)

func TestListHoldings(t *testing.T) {
	f := seedLedger(t)
	seedPrices(t, f)
	ctx := context.Background()

	got, err := ListHoldings(ctx, f.db, f.adapter, nil, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d holdings, want 3", len(got))
	}

	// Ordered by account then security.
	aapl := got[0]
	if aapl.AccountID != f.brokerage.ID || aapl.SecurityKey != "AAPL" {
		t.Fatalf("first holding = %+v", aapl)
	}
	if !aapl.Units.Equal(d("6")) {
		t.Errorf("AAPL units = %s, want 6 (10 bought, 4 sold)", aapl.Units)
	}
	if aapl.Price == nil || !aapl.Price.Equal(d("130")) {
		t.Errorf("AAPL price = %v, want latest close 130", aapl.Price)
	}
	if aapl.Value == nil || !aapl.Value.Equal(d("780")) {
		t.Errorf("AAPL value = %v, want 780", aapl.Value)
	}
	if !aapl.LastTransaction.Equal(date(2024, 6, 20)) {
		t.Errorf("AAPL last transaction = %s", aapl.LastTransaction)
	}

	gold := got[1]
	if gold.SecurityKey != "GOLDETF" || !gold.Units.Equal(d("25")) || gold.Value == nil || !gold.Value.Equal(d("550")) {
		t.Errorf("gold holding = %+v", gold)
	}

	pension := got[2]
	if pension.AccountID != f.pension.ID || pension.SecurityKey != "AAPL" || !pension.Units.Equal(d("5")) {
		t.Errorf("pension holding = %+v", pension)
	}
}

func TestListHoldingsAsOfDate(t *testing.T) {
	f := seedLedger(t)
	seedPrices(t, f)
	ctx := context.Background()

	got, err := ListHoldings(ctx, f.db, f.adapter, nil,
		ListOptions{Queries: []string{"date:..2024-06-30"}, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	// The pension buy is in September, so only brokerage positions exist.
	if len(got) != 2 {
		t.Fatalf("got %d holdings, want 2", len(got))
	}
	aapl := got[0]
	if !aapl.Units.Equal(d("6")) {
		t.Errorf("units = %s, want 6", aapl.Units)
	}
	// Valued at the June quote, not the later September one.
	if aapl.Price == nil || !aapl.Price.Equal(d("120")) {
		t.Errorf("price = %v, want 120", aapl.Price)
	}
	if aapl.Value == nil || !aapl.Value.Equal(d("720")) {
		t.Errorf("value = %v, want 720", aapl.Value)
	}
}

func TestListHoldingsSecurityFilter(t *testing.T) {
	f := seedLedger(t)
	seedPrices(t, f)
	ctx := context.Background()

	got, err := ListHoldings(ctx, f.db, f.adapter, nil,
		ListOptions{Queries: []string{"gold"}, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].SecurityKey != "GOLDETF" {
		t.Fatalf("got %+v, want just the gold position", got)
	}
}

func TestListHoldingsWithoutQuote(t *testing.T) {
	f := seedLedger(t)
	ctx := context.Background()

	// TBOND has a position but no price history.
	if _, err := InsertTransaction(ctx, f.db, f.adapter, nil, TransactionWrite{
		Date: date(2024, 2, 1), Type: TransactionPurchase, Description: "bond buy",
		Amount: d("200"), Units: d("2"), AccountID: f.pension.ID, SecurityKey: "TBOND",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := ListHoldings(ctx, f.db, f.adapter, nil,
		ListOptions{Queries: []string{"tbond"}, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d holdings, want 1", len(got))
	}
	if got[0].Price != nil || got[0].PriceDate != nil || got[0].Value != nil {
		t.Errorf("unpriced holding should carry nil valuation, got %+v", got[0])
	}
}

func TestListHoldingsClosedPositionExcluded(t *testing.T) {
	f := seedLedger(t)
	ctx := context.Background()

	// Sell the rest of the brokerage AAPL position.
	if _, err := InsertTransaction(ctx, f.db, f.adapter, nil, TransactionWrite{
		Date: date(2024, 12, 1), Type: TransactionSale, Description: "apple exit",
		Amount: d("800"), Units: d("-6"), AccountID: f.brokerage.ID, SecurityKey: "AAPL",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := ListHoldings(ctx, f.db, f.adapter, nil, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range got {
		if h.AccountID == f.brokerage.ID && h.SecurityKey == "AAPL" {
			t.Errorf("closed position still reported: %+v", h)
		}
	}
	if len(got) != 2 {
		t.Errorf("got %d holdings, want 2", len(got))
	}
}
