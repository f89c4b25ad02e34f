package workflow

import (
	"sort"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/shopspring/decimal"
)

// Transaction is the replay input: one signed movement on a customer's account.
// Seq is the explicit insertion sequence; it, not slice order, breaks ties
// between same-timestamp transactions.
type Transaction struct {
	Date        time.Time               `json:"date"`
	Seq         int                     `json:"seq"`
	SourceType  models.LedgerSourceType `json:"source_type"`
	Description string                  `json:"description"`
	Amount      decimal.Decimal         `json:"amount"`
}

// StatementLine is one row of the cari hesap statement.
type StatementLine struct {
	Date        time.Time               `json:"date"`
	Seq         int                     `json:"seq"`
	SourceType  models.LedgerSourceType `json:"source_type"`
	Description string                  `json:"description"`
	Amount      decimal.Decimal         `json:"amount"`
	Balance     decimal.Decimal         `json:"balance"`
}

// Replay produces the running-balance statement from an opening balance and a
// transaction set. Input order is irrelevant: transactions are sorted by
// (date, seq) before the balance walk, so the same set always yields the same
// statement.
func Replay(openingBalance decimal.Decimal, transactions []Transaction) []StatementLine {
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Seq < sorted[j].Seq
	})

	statement := make([]StatementLine, 0, len(sorted))
	balance := openingBalance
	for _, txn := range sorted {
		balance = balance.Add(txn.Amount)
		statement = append(statement, StatementLine{
			Date:        txn.Date,
			Seq:         txn.Seq,
			SourceType:  txn.SourceType,
			Description: txn.Description,
			Amount:      txn.Amount,
			Balance:     balance,
		})
	}
	return statement
}

func entriesToTransactions(entries []*models.LedgerEntry) []Transaction {
	txns := make([]Transaction, 0, len(entries))
	for _, e := range entries {
		txns = append(txns, Transaction{
			Date:        e.Date,
			Seq:         e.Seq,
			SourceType:  e.SourceType,
			Description: e.Description,
			Amount:      e.Amount,
		})
	}
	return txns
}
