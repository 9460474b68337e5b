package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// CreateCreditGrant creates a lot and its credit entry atomically
func (s *pgStore) CreateCreditGrant(ctx context.Context, input CreditGrantInput) (*schema.CreditLot, error) {
	if input.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("grant amount must be positive: %w", domain.ErrValidation)
	}

	var lot schema.CreditLot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lot = schema.CreditLot{
			AccountID:      input.AccountID,
			Source:         input.Source,
			OriginalAmount: input.Amount,
			Remaining:      input.Amount,
			TransferID:     input.TransferID,
		}
		if err := tx.Create(&lot).Error; err != nil {
			return fmt.Errorf("failed to create credit lot: %w", err)
		}

		entryType := domain.EntryTypeCredit
		if input.Source == domain.LotSourceTransferIn {
			entryType = domain.EntryTypeTransferIn
		}

		entry := schema.LedgerEntry{
			AccountID:  input.AccountID,
			EntryType:  entryType,
			Amount:     input.Amount,
			LotID:      &lot.ID,
			TransferID: input.TransferID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create ledger entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &lot, nil
}

// drainLots locks an account's open lots oldest-first and decrements them
// until amount is covered, appending one entry per touched lot. Must run
// inside a transaction. Returns domain.ErrInsufficientBalance without
// modifying anything when the lots cannot cover the amount.
func drainLots(tx *gorm.DB, accountID int64, amount decimal.Decimal, entryType domain.EntryType, transferID, reservationID *string) ([]ConsumedLot, error) {
	var lots []schema.CreditLot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ? AND remaining > 0", accountID).
		Order("created_at ASC, id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock credit lots: %w", err)
	}

	available := decimal.Zero
	for _, lot := range lots {
		available = available.Add(lot.Remaining)
	}
	if available.LessThan(amount) {
		return nil, domain.ErrInsufficientBalance
	}

	remaining := amount
	consumed := make([]ConsumedLot, 0, len(lots))
	for i := range lots {
		if remaining.Sign() == 0 {
			break
		}

		take := decimal.Min(lots[i].Remaining, remaining)
		newRemaining := lots[i].Remaining.Sub(take)

		if err := tx.Model(&schema.CreditLot{}).
			Where("id = ?", lots[i].ID).
			Update("remaining", newRemaining).Error; err != nil {
			return nil, fmt.Errorf("failed to decrement credit lot: %w", err)
		}

		entry := schema.LedgerEntry{
			AccountID:     accountID,
			EntryType:     entryType,
			Amount:        take,
			LotID:         &lots[i].ID,
			TransferID:    transferID,
			ReservationID: reservationID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return nil, fmt.Errorf("failed to create ledger entry: %w", err)
		}

		consumed = append(consumed, ConsumedLot{LotID: lots[i].ID, Amount: take})
		remaining = remaining.Sub(take)
	}

	return consumed, nil
}

// ConsumeCredits drains lots oldest-first with debit entries per lot
func (s *pgStore) ConsumeCredits(ctx context.Context, input ConsumeInput) ([]ConsumedLot, error) {
	if input.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("consume amount must be positive: %w", domain.ErrValidation)
	}

	var consumed []ConsumedLot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		consumed, err = drainLots(tx, input.AccountID, input.Amount, domain.EntryTypeDebit, nil, input.ReservationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return consumed, nil
}

// CreateTransfer moves credits between accounts atomically. The debit side
// drains the sender's lots FIFO with transfer_out entries; the credit side
// opens one transfer_in lot for the receiver. Either both sides land or
// neither does.
func (s *pgStore) CreateTransfer(ctx context.Context, input TransferInput) (*schema.Transfer, error) {
	if input.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive: %w", domain.ErrValidation)
	}
	if input.FromAccountID == input.ToAccountID {
		return nil, fmt.Errorf("transfer to self: %w", domain.ErrValidation)
	}

	var transfer schema.Transfer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		transfer = schema.Transfer{
			ID:            input.ID,
			FromAccountID: input.FromAccountID,
			ToAccountID:   input.ToAccountID,
			Amount:        input.Amount,
			Status:        domain.TransferStatusPending,
			CreatedAt:     now,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return fmt.Errorf("failed to create transfer: %w", err)
		}

		// Debit side
		if _, err := drainLots(tx, input.FromAccountID, input.Amount, domain.EntryTypeTransferOut, &transfer.ID, nil); err != nil {
			return err
		}

		// Credit side
		lot := schema.CreditLot{
			AccountID:      input.ToAccountID,
			Source:         domain.LotSourceTransferIn,
			OriginalAmount: input.Amount,
			Remaining:      input.Amount,
			TransferID:     &transfer.ID,
		}
		if err := tx.Create(&lot).Error; err != nil {
			return fmt.Errorf("failed to create transfer-in lot: %w", err)
		}

		entry := schema.LedgerEntry{
			AccountID:  input.ToAccountID,
			EntryType:  domain.EntryTypeTransferIn,
			Amount:     input.Amount,
			LotID:      &lot.ID,
			TransferID: &transfer.ID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create transfer-in entry: %w", err)
		}

		completedAt := time.Now()
		transfer.Status = domain.TransferStatusCompleted
		transfer.CompletedAt = &completedAt
		if err := tx.Model(&schema.Transfer{}).
			Where("id = ? AND status = ?", transfer.ID, domain.TransferStatusPending).
			Updates(map[string]interface{}{
				"status":       domain.TransferStatusCompleted,
				"completed_at": completedAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to complete transfer: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &transfer, nil
}

// GetTransferByID retrieves a transfer by its ULID
func (s *pgStore) GetTransferByID(ctx context.Context, id string) (*schema.Transfer, error) {
	var transfer schema.Transfer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&transfer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &transfer, nil
}

// GetBalance returns the sum of an account's lot remainders
func (s *pgStore) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var balance decimal.NullDecimal
	err := s.db.WithContext(ctx).Model(&schema.CreditLot{}).
		Select("COALESCE(SUM(remaining), 0)").
		Where("account_id = ?", accountID).
		Scan(&balance).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	if !balance.Valid {
		return decimal.Zero, nil
	}
	return balance.Decimal, nil
}

// GetLedgerEntries retrieves an account's entries, newest first
func (s *pgStore) GetLedgerEntries(ctx context.Context, accountID int64, limit int, offset uint64) ([]schema.LedgerEntry, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.LedgerEntry{}).Where("account_id = ?", accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	var entries []schema.LedgerEntry
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(int(offset)). //nolint:gosec,G115
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	return entries, uint64(total), nil //nolint:gosec,G115
}

// GetImbalancedAccounts returns accounts whose entry-derived balance and lot
// remainders disagree. A healthy ledger returns no rows.
func (s *pgStore) GetImbalancedAccounts(ctx context.Context) ([]ImbalancedAccount, error) {
	var rows []ImbalancedAccount
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			a.id AS account_id,
			COALESCE(e.balance, 0) AS entry_balance,
			COALESCE(l.balance, 0) AS lot_balance
		FROM accounts a
		LEFT JOIN (
			SELECT account_id, SUM(
				CASE WHEN entry_type IN ('credit', 'transfer_in') THEN amount ELSE -amount END
			) AS balance
			FROM ledger_entries
			GROUP BY account_id
		) e ON e.account_id = a.id
		LEFT JOIN (
			SELECT account_id, SUM(remaining) AS balance
			FROM credit_lots
			GROUP BY account_id
		) l ON l.account_id = a.id
		WHERE COALESCE(e.balance, 0) <> COALESCE(l.balance, 0)
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query imbalanced accounts: %w", err)
	}
	return rows, nil
}

// GetUnbalancedTransfers returns transfers whose paired entries do not net
// to zero. Incoming sides count positive, outgoing negative; a complete
// transfer has exactly two entries summing to zero.
func (s *pgStore) GetUnbalancedTransfers(ctx context.Context) ([]UnbalancedTransfer, error) {
	var rows []UnbalancedTransfer
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			transfer_id,
			SUM(CASE WHEN entry_type = 'transfer_in' THEN amount ELSE -amount END) AS net,
			COUNT(*) AS entry_count
		FROM ledger_entries
		WHERE transfer_id IS NOT NULL
		GROUP BY transfer_id
		HAVING SUM(CASE WHEN entry_type = 'transfer_in' THEN amount ELSE -amount END) <> 0
			OR COUNT(*) < 2
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query unbalanced transfers: %w", err)
	}
	return rows, nil
}

// GetOvercommittedTenants returns tenants whose cumulative finalized cost
// exceeds everything they ever reserved.
func (s *pgStore) GetOvercommittedTenants(ctx context.Context) ([]OvercommittedTenant, error) {
	var rows []OvercommittedTenant
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			tenant_id,
			SUM(COALESCE(actual_cost, 0)) AS committed,
			SUM(reserved_amount) AS reserved
		FROM budget_reservations
		GROUP BY tenant_id
		HAVING SUM(COALESCE(actual_cost, 0)) > SUM(reserved_amount)
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query overcommitted tenants: %w", err)
	}
	return rows, nil
}

// ListReservationCounters returns every tenant's budget rollup derived from
// its reservation rows.
func (s *pgStore) ListReservationCounters(ctx context.Context) ([]TenantCounters, error) {
	var rows []TenantCounters
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			tenant_id,
			SUM(CASE WHEN state = ? THEN reserved_amount ELSE 0 END) AS reserved,
			SUM(COALESCE(actual_cost, 0)) AS committed,
			SUM(reserved_amount) AS reserved_total
		FROM budget_reservations
		GROUP BY tenant_id
	`, domain.ReservationStateReserved).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query reservation counters: %w", err)
	}
	return rows, nil
}

// CreateClawbackReceivable records a detected reversal; idempotent per reservation
func (s *pgStore) CreateClawbackReceivable(ctx context.Context, accountID int64, reservationID string, amount decimal.Decimal) (*schema.ClawbackReceivable, error) {
	receivable := schema.ClawbackReceivable{
		AccountID:     accountID,
		ReservationID: reservationID,
		Amount:        amount,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reservation_id"}},
		DoNothing: true,
	}).Create(&receivable)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create clawback receivable: %w", result.Error)
	}

	// ID 0 means the reversal was already recorded, so fetch it
	if receivable.ID == 0 {
		if err := s.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&receivable).Error; err != nil {
			return nil, fmt.Errorf("failed to get existing clawback receivable: %w", err)
		}
	}

	return &receivable, nil
}

// ResolveClawback drains the owed amount from the account's lots with
// clawback entries and marks the receivable resolved. A receivable the
// account cannot yet cover stays open and returns
// domain.ErrInsufficientBalance.
func (s *pgStore) ResolveClawback(ctx context.Context, receivableID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receivable schema.ClawbackReceivable
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", receivableID).
			First(&receivable).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock clawback receivable: %w", err)
		}

		if receivable.ResolvedAt != nil {
			return nil
		}

		if _, err := drainLots(tx, receivable.AccountID, receivable.Amount, domain.EntryTypeClawback, nil, &receivable.ReservationID); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&schema.ClawbackReceivable{}).
			Where("id = ?", receivable.ID).
			Update("resolved_at", now).Error; err != nil {
			return fmt.Errorf("failed to resolve clawback receivable: %w", err)
		}

		return nil
	})
}

// ListUnresolvedClawbacks retrieves receivables opened before the cutoff
func (s *pgStore) ListUnresolvedClawbacks(ctx context.Context, olderThan time.Time) ([]schema.ClawbackReceivable, error) {
	var receivables []schema.ClawbackReceivable
	err := s.db.WithContext(ctx).
		Where("resolved_at IS NULL AND created_at < ?", olderThan).
		Order("created_at ASC").
		Find(&receivables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved clawbacks: %w", err)
	}
	return receivables, nil
}
