package model

import (
	"time"

	"github.com/google/uuid"
)

// Scheduled action names
const (
	ActionAutoReject      = "auto_reject"
	ActionReassignManager = "reassign_manager"
)

// ScheduledAction states
const (
	ScheduledPending = "PENDING"
	ScheduledRunning = "RUNNING"
	ScheduledDone    = "DONE"
	ScheduledFailed  = "FAILED"
)

// ScheduledAction is one row of the deferred-execution outbox. Rows are
// inserted inside the transaction of the action that needs the deferred work,
// so a commit implies the work is durably enqueued; the worker claims due rows
// and executes them at-least-once. Failed rows keep LastError and are not
// retried automatically.
type ScheduledAction struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action      string     `gorm:"type:varchar(50);not null;index" json:"action"`
	FireAt      time.Time  `gorm:"not null;index" json:"fire_at"`
	Payload     string     `gorm:"type:jsonb;not null" json:"payload"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
