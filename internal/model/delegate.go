package model

import (
	"time"

	"github.com/google/uuid"
)

// Delegate is a proposed or decided transfer of managerial approval authority
// from DelegateFrom to DelegateTo for the [StartDate, EndDate] window.
type Delegate struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"delegate_id"`
	DelegateFrom       int            `gorm:"not null;index" json:"delegate_from"`
	DelegateTo         int            `gorm:"not null;index" json:"delegate_to"`
	StartDate          time.Time      `gorm:"not null" json:"start_date"`
	EndDate            time.Time      `gorm:"not null" json:"end_date"`
	Reason             string         `gorm:"type:varchar(255)" json:"reason"`
	Department         string         `gorm:"type:varchar(50)" json:"department"`
	Status             DelegateStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	NotificationStatus DelegateStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"notification_status"`
	CreatedOn          time.Time      `gorm:"autoCreateTime" json:"created_on"`
}

// DelegateStatusHistory is an append-only record of each status change to a
// Delegate, mirroring the AuditTrail pattern for requests.
type DelegateStatusHistory struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"delegate_status_history_id"`
	DelegateID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"delegate_id"`
	DelegateFrom int            `gorm:"not null" json:"delegate_from"`
	DelegateTo   int            `gorm:"not null" json:"delegate_to"`
	Status       DelegateStatus `gorm:"type:varchar(20);not null" json:"status"`
	UpdatedOn    time.Time      `gorm:"autoCreateTime" json:"updated_on"`
}
