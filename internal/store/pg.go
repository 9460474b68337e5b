package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// GetAccountByExternalID retrieves an account by its external identifier
func (s *pgStore) GetAccountByExternalID(ctx context.Context, externalID string) (*schema.Account, error) {
	var account schema.Account
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetAccountByID retrieves an account by its internal ID
func (s *pgStore) GetAccountByID(ctx context.Context, id int64) (*schema.Account, error) {
	var account schema.Account
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetOrCreateAccount fetches an account, creating it if absent
func (s *pgStore) GetOrCreateAccount(ctx context.Context, externalID string, kind schema.AccountKind) (*schema.Account, error) {
	account := schema.Account{
		ExternalID: externalID,
		Kind:       kind,
	}

	// ON CONFLICT DO NOTHING keeps concurrent first-seen requests from racing
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(&account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	// ID 0 means the account already existed, so fetch it
	if account.ID == 0 {
		if err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&account).Error; err != nil {
			return nil, fmt.Errorf("failed to get existing account: %w", err)
		}
	}

	return &account, nil
}

// ListAccounts retrieves all accounts
func (s *pgStore) ListAccounts(ctx context.Context) ([]schema.Account, error) {
	var accounts []schema.Account
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpsertTenantBudget writes back the durable budget mirror
func (s *pgStore) UpsertTenantBudget(ctx context.Context, budget *schema.TenantBudget) error {
	budget.UpdatedAt = time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"spend_limit", "committed", "reserved", "updated_at"}),
	}).Create(budget).Error
	if err != nil {
		return fmt.Errorf("failed to upsert tenant budget: %w", err)
	}
	return nil
}

// GetTenantBudget retrieves a tenant's budget mirror
func (s *pgStore) GetTenantBudget(ctx context.Context, tenantID string) (*schema.TenantBudget, error) {
	var budget schema.TenantBudget
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant budget: %w", err)
	}
	return &budget, nil
}

// ListTenantBudgets retrieves all budget mirrors
func (s *pgStore) ListTenantBudgets(ctx context.Context) ([]schema.TenantBudget, error) {
	var budgets []schema.TenantBudget
	if err := s.db.WithContext(ctx).Order("tenant_id ASC").Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenant budgets: %w", err)
	}
	return budgets, nil
}

// CreateReservation persists a hold; returns the existing row when the
// tenant-scoped idempotency key was already used
func (s *pgStore) CreateReservation(ctx context.Context, reservation *schema.Reservation) (*schema.Reservation, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(reservation)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var existing schema.Reservation
		err := s.db.WithContext(ctx).
			Where("tenant_id = ? AND idempotency_key = ?", reservation.TenantID, reservation.IdempotencyKey).
			First(&existing).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get existing reservation: %w", err)
		}
		return &existing, nil
	}

	return reservation, nil
}

// GetReservation retrieves a reservation by its ULID
func (s *pgStore) GetReservation(ctx context.Context, id string) (*schema.Reservation, error) {
	var reservation schema.Reservation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

// CloseReservation moves a reservation out of the reserved state exactly
// once; returns false when it was already closed
func (s *pgStore) CloseReservation(ctx context.Context, id string, actualCost decimal.Decimal, state domain.ReservationState, finalizedAt time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Model(&schema.Reservation{}).
		Where("id = ? AND state = ?", id, domain.ReservationStateReserved).
		Updates(map[string]interface{}{
			"actual_cost":  actualCost,
			"state":        state,
			"finalized_at": finalizedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to close reservation: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListStaleReservations retrieves still-open reservations created before the cutoff
func (s *pgStore) ListStaleReservations(ctx context.Context, olderThan time.Time) ([]schema.Reservation, error) {
	var reservations []schema.Reservation
	err := s.db.WithContext(ctx).
		Where("state = ? AND created_at < ?", domain.ReservationStateReserved, olderThan).
		Order("created_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale reservations: %w", err)
	}
	return reservations, nil
}

// CreateIdempotencyRecord inserts a record in the new state; returns the
// existing row and created=false when the key was already seen
func (s *pgStore) CreateIdempotencyRecord(ctx context.Context, record *schema.IdempotencyRecord) (*schema.IdempotencyRecord, bool, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create idempotency record: %w", result.Error)
	}

	if record.ID == 0 {
		existing, err := s.GetIdempotencyRecord(ctx, record.TenantID, record.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("failed to get existing idempotency record: %w", gorm.ErrRecordNotFound)
		}
		return existing, false, nil
	}

	return record, true, nil
}

// GetIdempotencyRecord retrieves a record by tenant and key
func (s *pgStore) GetIdempotencyRecord(ctx context.Context, tenantID, key string) (*schema.IdempotencyRecord, error) {
	var record schema.IdempotencyRecord
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}
	return &record, nil
}

// TransitionIdempotencyRecord moves a record between states exactly once;
// returns false when the record was not in the expected state
func (s *pgStore) TransitionIdempotencyRecord(ctx context.Context, id int64, from, to domain.IdempotencyState, responseBody datatypes.JSON, partialCost decimal.Decimal) (bool, error) {
	updates := map[string]interface{}{
		"state":        to,
		"partial_cost": partialCost,
	}
	if responseBody != nil {
		updates["response_body"] = responseBody
	}
	switch to {
	case domain.IdempotencyStateCompleted, domain.IdempotencyStateAborted, domain.IdempotencyStateResumeLost:
		updates["completed_at"] = time.Now()
	}

	result := s.db.WithContext(ctx).Model(&schema.IdempotencyRecord{}).
		Where("id = ? AND state = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition idempotency record: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListActiveIdempotencyRecords retrieves in-flight records created before the cutoff
func (s *pgStore) ListActiveIdempotencyRecords(ctx context.Context, olderThan time.Time) ([]schema.IdempotencyRecord, error) {
	var records []schema.IdempotencyRecord
	err := s.db.WithContext(ctx).
		Where("state IN ? AND created_at < ?",
			[]domain.IdempotencyState{domain.IdempotencyStateNew, domain.IdempotencyStateActive},
			olderThan).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active idempotency records: %w", err)
	}
	return records, nil
}

// GetSigningKey retrieves a verification key by kid
func (s *pgStore) GetSigningKey(ctx context.Context, kid string) (*schema.SigningKey, error) {
	var key schema.SigningKey
	err := s.db.WithContext(ctx).Where("kid = ?", kid).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get signing key: %w", err)
	}
	return &key, nil
}

// GetActiveSigningKey retrieves the key currently used for minting
func (s *pgStore) GetActiveSigningKey(ctx context.Context) (*schema.SigningKey, error) {
	var key schema.SigningKey
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active signing key: %w", err)
	}
	return &key, nil
}

// RotateSigningKey retires the active key and installs a new one
func (s *pgStore) RotateSigningKey(ctx context.Context, key *schema.SigningKey) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&schema.SigningKey{}).
			Where("active = ?", true).
			Updates(map[string]interface{}{"active": false, "retired_at": now}).Error; err != nil {
			return fmt.Errorf("failed to retire active signing keys: %w", err)
		}

		key.Active = true
		if err := tx.Create(key).Error; err != nil {
			return fmt.Errorf("failed to create signing key: %w", err)
		}

		return nil
	})
}

// GetBYOKKeys retrieves a tenant's non-revoked provider keys
func (s *pgStore) GetBYOKKeys(ctx context.Context, tenantID string) ([]schema.BYOKKey, error) {
	var keys []schema.BYOKKey
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND revoked = ?", tenantID, false).
		Order("provider ASC").
		Find(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get provider keys: %w", err)
	}
	return keys, nil
}

// CreateBYOKKey registers a tenant's provider key
func (s *pgStore) CreateBYOKKey(ctx context.Context, key *schema.BYOKKey) error {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "provider"}},
		DoNothing: true,
	}).Create(key)
	if result.Error != nil {
		return fmt.Errorf("failed to create provider key: %w", result.Error)
	}
	if key.ID == 0 {
		return domain.ErrConflict
	}
	return nil
}

// RevokeBYOKKey excludes a key from routing
func (s *pgStore) RevokeBYOKKey(ctx context.Context, tenantID string, provider domain.Provider) error {
	result := s.db.WithContext(ctx).Model(&schema.BYOKKey{}).
		Where("tenant_id = ? AND provider = ? AND revoked = ?", tenantID, provider, false).
		Update("revoked", true)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke provider key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateReconciliationRun persists a sweep outcome
func (s *pgStore) CreateReconciliationRun(ctx context.Context, run *schema.ReconciliationRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create reconciliation run: %w", err)
	}
	return nil
}

// UpdateReconciliationRun finalizes a sweep record
func (s *pgStore) UpdateReconciliationRun(ctx context.Context, run *schema.ReconciliationRun) error {
	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("failed to update reconciliation run: %w", err)
	}
	return nil
}

// ListReconciliationRuns retrieves recent sweeps, newest first
func (s *pgStore) ListReconciliationRuns(ctx context.Context, limit int) ([]schema.ReconciliationRun, error) {
	var runs []schema.ReconciliationRun
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation runs: %w", err)
	}
	return runs, nil
}
