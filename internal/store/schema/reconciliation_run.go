package schema

import (
	"time"

	"gorm.io/datatypes"
)

// CheckStatus is the outcome of a single reconciliation check.
type CheckStatus string

const (
	CheckStatusPass CheckStatus = "pass"
	// CheckStatusNeedsAttention covers both detected anomalies and checks
	// that failed to execute. An error is never reported as a pass.
	CheckStatusNeedsAttention CheckStatus = "needs_attention"
)

// ReconciliationRun represents the reconciliation_runs table - one row per
// sweep, recording the outcome of every check.
type ReconciliationRun struct {
	// ID is a ULID assigned when the sweep starts
	ID string `gorm:"column:id;primaryKey;type:text"`
	// StartedAt is the sweep start timestamp
	StartedAt time.Time `gorm:"column:started_at;not null;type:timestamptz;index"`
	// FinishedAt is set when every check has reported
	FinishedAt *time.Time `gorm:"column:finished_at;type:timestamptz"`
	// Checks holds per-check results keyed by check name
	Checks datatypes.JSON `gorm:"column:checks;not null;type:jsonb"`
	// AnomalyCount is the number of checks that reported needs_attention
	AnomalyCount int `gorm:"column:anomaly_count;not null;default:0"`
}

// TableName specifies the table name for the ReconciliationRun model
func (ReconciliationRun) TableName() string {
	return "reconciliation_runs"
}
