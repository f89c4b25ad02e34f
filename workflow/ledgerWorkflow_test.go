package workflow

import (
	"testing"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/shopspring/decimal"
)

func TestPostingDate_ClampsBackdatedEntries(t *testing.T) {
	tail := &models.LedgerEntry{Date: day(2)}

	if got := postingDate(day(1), tail); !got.Equal(day(2)) {
		t.Fatalf("backdated request must land on the tail date, got %s", got)
	}
	if got := postingDate(day(2), tail); !got.Equal(day(2)) {
		t.Fatalf("same-day request must keep its date, got %s", got)
	}
	if got := postingDate(day(5), tail); !got.Equal(day(5)) {
		t.Fatalf("forward request must keep its date, got %s", got)
	}
	if got := postingDate(day(1), nil); !got.Equal(day(1)) {
		t.Fatalf("first entry keeps its requested date, got %s", got)
	}
}

// A return approved with a business date before the order it follows must not
// break the statement: persisted rows are appended with clamped dates, so the
// (date, seq) replay walks them in append order and reproduces every persisted
// balance.
func TestReplay_MatchesPersistedBalancesAfterBackdatedReturn(t *testing.T) {
	opening := decimal.Zero

	// order posted on day 2
	var tail *models.LedgerEntry
	order := appendForTest(opening, tail, 1, day(2), models.LedgerSourceOrder, amt("-500.00"))
	// return approved afterwards, carrying a day-1 business date
	ret := appendForTest(opening, order, 2, day(1), models.LedgerSourceReturn, amt("120.00"))

	if !ret.Date.Equal(day(2)) {
		t.Fatalf("expected the return to be clamped onto day 2, got %s", ret.Date)
	}
	if got := ret.Balance.StringFixed(2); got != "-380.00" {
		t.Fatalf("expected persisted balance -380.00 after the return, got %s", got)
	}

	entries := []*models.LedgerEntry{order, ret}
	statement := Replay(opening, entriesToTransactions(entries))
	if len(statement) != len(entries) {
		t.Fatalf("expected %d statement lines, got %d", len(entries), len(statement))
	}
	for i, line := range statement {
		if !line.Balance.Equal(entries[i].Balance) {
			t.Fatalf("seq %d: replayed %s, persisted %s", entries[i].Seq, line.Balance, entries[i].Balance)
		}
	}

	// the account must accept further appends on top of the clamped tail
	next := appendForTest(opening, ret, 3, time.Now().UTC(), models.LedgerSourcePayment, amt("380.00"))
	if !next.Balance.IsZero() {
		t.Fatalf("expected a zero balance after settling, got %s", next.Balance)
	}
}

// appendForTest mirrors the persistence path: clamp the date against the tail,
// then stack the balance on the previous one.
func appendForTest(opening decimal.Decimal, tail *models.LedgerEntry, seq int, date time.Time, sourceType models.LedgerSourceType, amount decimal.Decimal) *models.LedgerEntry {
	prev := opening
	if tail != nil {
		prev = tail.Balance
	}
	return &models.LedgerEntry{
		Seq:        seq,
		Date:       postingDate(date, tail),
		SourceType: sourceType,
		Amount:     amount,
		Balance:    prev.Add(amount),
	}
}
