package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry duration enum constants
const (
	DurationFullDay = "Full Day"
	DurationHalfDay = "Half Day"
)

// WFHRequest groups one or more dated entries submitted by an employee for
// approval by their reporting manager. OverallStatus is derived from the
// entries via AggregateStatus and is never written directly after creation.
type WFHRequest struct {
	ID                     uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"request_id"`
	RequesterID            int                `gorm:"not null;index" json:"requester_id"`
	ReportingManager       int                `gorm:"not null;index" json:"reporting_manager"`
	Department             string             `gorm:"type:varchar(50)" json:"department"`
	OverallStatus          Status             `gorm:"type:varchar(30);not null;default:'Pending'" json:"overall_status"`
	NotificationStatus     NotificationStatus `gorm:"type:varchar(30);not null;default:'Delivered'" json:"notification_status"`
	LastNotificationStatus NotificationStatus `gorm:"type:varchar(30);not null;default:'Delivered'" json:"last_notification_status"`
	Entries                []WFHRequestEntry  `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
	CreatedAt              time.Time          `gorm:"autoCreateTime" json:"created_at"`
	ModifiedAt             time.Time          `gorm:"autoUpdateTime" json:"modified_at"`
}

// WFHRequestEntry is one requested day or half-day within a request.
// ActionReason holds the free text supplied by the actor of a rejecting or
// withdrawing action, distinct from the requester's own Reason.
type WFHRequestEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"entry_id"`
	RequestID    uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	EntryDate    time.Time `gorm:"type:date;not null;index" json:"entry_date"`
	Reason       string    `gorm:"type:varchar(255)" json:"reason"`
	Duration     string    `gorm:"type:varchar(50)" json:"duration"`
	Status       Status    `gorm:"type:varchar(30);not null;default:'Pending'" json:"status"`
	ActionReason string    `gorm:"type:varchar(255)" json:"action_reason"`
}

// DurationDays returns the day fraction an entry accounts for.
func DurationDays(duration string) decimal.Decimal {
	if duration == DurationHalfDay {
		return decimal.NewFromFloat(0.5)
	}
	return decimal.NewFromInt(1)
}

// TotalDays sums the day fractions of the given entries.
func TotalDays(entries []WFHRequestEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(DurationDays(e.Duration))
	}
	return total
}
