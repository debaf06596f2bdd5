package models

import (
	"time"

	"github.com/google/uuid"
)

// Sync modes.
const (
	SyncModeFull    = "full"
	SyncModePartial = "partial"
)

// SyncJob is one row of the sync job ledger: the durable record of a
// single synchronization run. A row is created before the first remote
// fetch and finalized on every exit path, so a failed run still leaves an
// auditable record.
type SyncJob struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	EntityName   string     `json:"entityName" db:"entity_name"`
	Mode         string     `json:"mode" db:"mode"`
	StartTime    time.Time  `json:"startTime" db:"start_time"`
	EndTime      *time.Time `json:"endTime,omitempty" db:"end_time"`
	Success      bool       `json:"success" db:"success"`
	CreatedCount int        `json:"createdCount" db:"created_count"`
	UpdatedCount int        `json:"updatedCount" db:"updated_count"`
	SkippedCount int        `json:"skippedCount" db:"skipped_count"`
	DeletedCount int        `json:"deletedCount" db:"deleted_count"`
	Message      string     `json:"message,omitempty" db:"message"`
}
