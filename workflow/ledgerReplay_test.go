package workflow

import (
	"testing"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. They validate the replay
// semantics the back-office payment tracking depends on:
// - same (date, seq) ordering always yields the same balance sequence
// - the seq tie-break is load-bearing, not accidental
// Full DB integration tests require MySQL + Redis and are gated elsewhere.

func day(n int) time.Time {
	return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC)
}

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestReplay_RunningBalanceScenario(t *testing.T) {
	// opening 0; order debit -500; payment +500; approved return +120
	txns := []Transaction{
		{Date: day(1), Seq: 1, SourceType: models.LedgerSourceOrder, Description: "Order #1", Amount: amt("-500.00")},
		{Date: day(2), Seq: 2, SourceType: models.LedgerSourcePayment, Description: "Payment #1", Amount: amt("500.00")},
		{Date: day(3), Seq: 3, SourceType: models.LedgerSourceReturn, Description: "Return #1 approved", Amount: amt("120.00")},
	}

	statement := Replay(decimal.Zero, txns)
	if len(statement) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(statement))
	}

	wantBalances := []string{"-500.00", "0.00", "120.00"}
	for i, want := range wantBalances {
		if got := statement[i].Balance.StringFixed(2); got != want {
			t.Fatalf("line %d: expected balance %s, got %s", i, want, got)
		}
	}
}

func TestReplay_IgnoresStorageOrder(t *testing.T) {
	txns := []Transaction{
		{Date: day(3), Seq: 3, Amount: amt("120.00")},
		{Date: day(1), Seq: 1, Amount: amt("-500.00")},
		{Date: day(2), Seq: 2, Amount: amt("500.00")},
	}

	statement := Replay(decimal.Zero, txns)
	if got := statement[len(statement)-1].Balance.StringFixed(2); got != "120.00" {
		t.Fatalf("expected final balance 120.00, got %s", got)
	}
	if !statement[0].Date.Equal(day(1)) {
		t.Fatalf("expected chronological first line, got %s", statement[0].Date)
	}
}

func TestReplay_Deterministic(t *testing.T) {
	txns := []Transaction{
		{Date: day(1), Seq: 1, Amount: amt("-250.50")},
		{Date: day(1), Seq: 2, Amount: amt("100.00")},
		{Date: day(2), Seq: 3, Amount: amt("-75.25")},
	}

	first := Replay(decimal.NewFromInt(40), txns)
	for run := 0; run < 50; run++ {
		again := Replay(decimal.NewFromInt(40), txns)
		for i := range first {
			if !first[i].Balance.Equal(again[i].Balance) {
				t.Fatalf("run %d line %d: %s != %s", run, i, first[i].Balance, again[i].Balance)
			}
		}
	}
}

func TestReplay_DateReorderChangesIntermediateBalances(t *testing.T) {
	a := Transaction{Date: day(1), Seq: 1, Amount: amt("-500.00")}
	b := Transaction{Date: day(2), Seq: 2, Amount: amt("300.00")}

	original := Replay(decimal.Zero, []Transaction{a, b})

	// swap the dates: the walk visits the credit first now
	a2, b2 := a, b
	a2.Date, b2.Date = day(2), day(1)
	swapped := Replay(decimal.Zero, []Transaction{a2, b2})

	if original[0].Balance.Equal(swapped[0].Balance) {
		t.Fatal("reordering by date must change the balance sequence")
	}
}

func TestReplay_SeqTieBreakIsLoadBearing(t *testing.T) {
	// identical timestamps, only seq differs
	debit := Transaction{Date: day(5), Seq: 1, Amount: amt("-500.00")}
	credit := Transaction{Date: day(5), Seq: 2, Amount: amt("200.00")}

	original := Replay(decimal.Zero, []Transaction{debit, credit})

	// swap insertion sequence
	debit2, credit2 := debit, credit
	debit2.Seq, credit2.Seq = 2, 1
	swapped := Replay(decimal.Zero, []Transaction{debit2, credit2})

	if original[0].Balance.Equal(swapped[0].Balance) {
		t.Fatal("swapping seq on same-timestamp entries must change the balance sequence")
	}
	// final balance is the same; only the path differs
	if !original[1].Balance.Equal(swapped[1].Balance) {
		t.Fatal("final balance must not depend on the tie-break")
	}
}

func TestReplay_OpeningBalanceIsTheFloor(t *testing.T) {
	statement := Replay(amt("-150.00"), []Transaction{
		{Date: day(1), Seq: 1, Amount: amt("150.00")},
	})
	if got := statement[0].Balance.StringFixed(2); got != "0.00" {
		t.Fatalf("expected 0.00 after repaying the opening debt, got %s", got)
	}
}

func TestReplay_EmptyLedger(t *testing.T) {
	if got := Replay(amt("42.00"), nil); len(got) != 0 {
		t.Fatalf("expected empty statement, got %d lines", len(got))
	}
}

func TestReplay_ReversalOffsetsExactly(t *testing.T) {
	txns := []Transaction{
		{Date: day(1), Seq: 1, SourceType: models.LedgerSourceOrder, Amount: amt("-899.99")},
		{Date: day(4), Seq: 2, SourceType: models.LedgerSourceReversal, Amount: amt("899.99")},
	}
	statement := Replay(decimal.Zero, txns)
	if !statement[1].Balance.IsZero() {
		t.Fatalf("reversal must restore the prior balance, got %s", statement[1].Balance)
	}
}
