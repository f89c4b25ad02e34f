package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrLedgerReplayInconsistency means a computed balance does not match a
// previously persisted one. It is a data-integrity fault: logged and surfaced,
// never silently corrected.
var ErrLedgerReplayInconsistency = errors.New("ledger replay inconsistency")

// appendEntryLocked writes one ledger row and moves the customer's stored
// balance. Caller must hold the customer's ledger lock and run inside tx.
// The persisted date is clamped so the ledger stays date-monotone: the
// (date, seq) replay must visit rows in the order their balances were written,
// or every statement after a backdated posting would diverge from the stored
// balances. The source document keeps its own business date.
func appendEntryLocked(ctx context.Context, tx *gorm.DB, customerId int, date time.Time, sourceType models.LedgerSourceType, sourceId int, description string, amount decimal.Decimal) (*models.LedgerEntry, error) {
	var customer models.Customer
	if err := tx.WithContext(ctx).First(&customer, customerId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	last, err := lastEntry(ctx, tx, customerId)
	if err != nil {
		return nil, err
	}
	date = postingDate(date, last)
	prevBalance := customer.OpeningBalance
	if last != nil {
		prevBalance = last.Balance
	}

	// The stored balance must agree with the tail of the ledger before anything
	// is appended on top of it.
	if !customer.CurrentAccountBalance.Equal(prevBalance) {
		err := fmt.Errorf("%w: customer %d stored balance %s, ledger tail %s",
			ErrLedgerReplayInconsistency, customerId, customer.CurrentAccountBalance, prevBalance)
		config.LogError(config.GetLogger(), "workflow", "appendEntryLocked", "balance cross-check", customerId, err)
		return nil, err
	}

	seq, err := nextSeq(ctx, tx, customerId)
	if err != nil {
		return nil, err
	}

	entry := models.LedgerEntry{
		CustomerId:  customerId,
		Seq:         seq,
		Date:        date,
		SourceType:  sourceType,
		SourceId:    sourceId,
		Description: description,
		Amount:      amount,
		Balance:     prevBalance.Add(amount),
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}

	err = tx.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", customerId).
		UpdateColumn("current_account_balance", entry.Balance).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// postingDate keeps appended dates monotone: an entry posted with a business
// date earlier than the current tail is persisted at the tail's date, so the
// (date, seq) sort and the append order agree.
func postingDate(requested time.Time, tail *models.LedgerEntry) time.Time {
	if tail != nil && requested.Before(tail.Date) {
		return tail.Date
	}
	return requested
}

func lastEntry(ctx context.Context, tx *gorm.DB, customerId int) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := tx.WithContext(ctx).
		Where("customer_id = ?", customerId).
		Order("date DESC, seq DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func nextSeq(ctx context.Context, tx *gorm.DB, customerId int) (int, error) {
	var maxSeq int
	err := tx.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("customer_id = ?", customerId).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

// AppendLedgerEntry posts one transaction onto a customer's account. Appends
// for the same customer are serialized by a distributed lock; different
// customers proceed in parallel.
func AppendLedgerEntry(ctx context.Context, customerId int, date time.Time, sourceType models.LedgerSourceType, sourceId int, description string, amount decimal.Decimal) (*models.LedgerEntry, error) {
	lock, err := utils.ObtainCustomerLock(ctx, customerId, "workflow", "AppendLedgerEntry")
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release(ctx) }()

	var entry *models.LedgerEntry
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err = appendEntryLocked(ctx, tx, customerId, date, sourceType, sourceId, description, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// PostManualAdjustment records a back-office correction, signed as entered.
func PostManualAdjustment(ctx context.Context, customerId int, date time.Time, description string, amount decimal.Decimal) (*models.LedgerEntry, error) {
	if amount.IsZero() {
		return nil, errors.New("adjustment amount cannot be zero")
	}
	return AppendLedgerEntry(ctx, customerId, date, models.LedgerSourceAdjustment, 0, description, amount)
}

// ReverseLedgerEntry cancels a posted entry with a new offsetting row. The
// original is untouched; deleting ledger rows is never an option.
func ReverseLedgerEntry(ctx context.Context, entryId int, reason string) (*models.LedgerEntry, error) {
	entry, err := utils.FetchModel[models.LedgerEntry](ctx, entryId)
	if err != nil {
		return nil, err
	}
	if entry.SourceType == models.LedgerSourceReversal {
		return nil, errors.New("cannot reverse a reversal entry")
	}

	description := fmt.Sprintf("Reversal of entry #%d", entryId)
	if reason != "" {
		description = fmt.Sprintf("%s: %s", description, reason)
	}
	return AppendLedgerEntry(ctx, entry.CustomerId, time.Now(), models.LedgerSourceReversal, entryId, description, entry.Amount.Neg())
}

// CurrentBalance is the last entry's balance, or the stored balance when the
// customer has no ledger rows yet.
func CurrentBalance(ctx context.Context, customerId int) (decimal.Decimal, error) {
	customer, err := models.GetCustomer(ctx, customerId)
	if err != nil {
		return decimal.Zero, err
	}

	db := config.GetDB()
	last, err := lastEntry(ctx, db, customerId)
	if err != nil {
		return decimal.Zero, err
	}
	if last == nil {
		return customer.CurrentAccountBalance, nil
	}
	return last.Balance, nil
}

// BuildStatement replays the customer's ledger into statement lines and
// cross-checks every replayed balance against the persisted one.
func BuildStatement(ctx context.Context, customerId int) ([]StatementLine, error) {
	customer, err := models.GetCustomer(ctx, customerId)
	if err != nil {
		return nil, err
	}
	entries, err := models.GetCustomerLedger(ctx, customerId)
	if err != nil {
		return nil, err
	}

	statement := Replay(customer.OpeningBalance, entriesToTransactions(entries))
	for i, line := range statement {
		if !line.Balance.Equal(entries[i].Balance) {
			err := fmt.Errorf("%w: customer %d entry seq %d replayed %s, persisted %s",
				ErrLedgerReplayInconsistency, customerId, entries[i].Seq, line.Balance, entries[i].Balance)
			config.LogError(config.GetLogger(), "workflow", "BuildStatement", "replay cross-check", customerId, err)
			return nil, err
		}
	}
	return statement, nil
}

// VerifyCustomerLedger is the consistency sweep behind payment tracking: full
// replay, then tail vs. stored balance.
func VerifyCustomerLedger(ctx context.Context, customerId int) error {
	statement, err := BuildStatement(ctx, customerId)
	if err != nil {
		return err
	}
	customer, err := models.GetCustomer(ctx, customerId)
	if err != nil {
		return err
	}

	expected := customer.OpeningBalance
	if len(statement) > 0 {
		expected = statement[len(statement)-1].Balance
	}
	if !customer.CurrentAccountBalance.Equal(expected) {
		err := fmt.Errorf("%w: customer %d stored balance %s, replayed %s",
			ErrLedgerReplayInconsistency, customerId, customer.CurrentAccountBalance, expected)
		config.LogError(config.GetLogger(), "workflow", "VerifyCustomerLedger", "tail cross-check", customerId, err)
		return err
	}
	return nil
}
