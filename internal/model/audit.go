package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditTrail is one immutable fact about a status transition. EntryID is nil
// for request-level rows recording a change of the aggregate overall status;
// entry-level rows carry a denormalized copy of the entry fields at the time
// of the event so the row survives later deletion of the entry.
type AuditTrail struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"audit_id"`
	RequestID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"request_id"`
	EntryID          *uuid.UUID `gorm:"type:uuid;index" json:"entry_id"`
	RequesterID      int        `gorm:"not null" json:"requester_id"`
	ReportingManager int        `gorm:"not null" json:"reporting_manager"`
	Department       string     `gorm:"type:varchar(50)" json:"department"`
	Status           Status     `gorm:"type:varchar(30);not null" json:"status"`
	EntryDate        *time.Time `gorm:"type:date" json:"entry_date,omitempty"`
	Reason           string     `gorm:"type:varchar(255)" json:"reason,omitempty"`
	Duration         string     `gorm:"type:varchar(50)" json:"duration,omitempty"`
	ActionReason     string     `gorm:"type:varchar(255)" json:"action_reason,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
