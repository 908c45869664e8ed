package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventCreated         = "created"
	EventRescheduled     = "rescheduled"
	EventStatusChanged   = "status_changed"
	EventPaymentChanged  = "payment_changed"
	EventDiscountDropped = "discount_dropped"
	EventAddonFlagged    = "addon_flagged"
	EventAddonsUpdated   = "addons_updated"
)

// ReservationEvent is an append-only audit record. Reschedules and state
// transitions write one row each instead of mutating a notes blob.
type ReservationEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	ReservationID uuid.UUID `gorm:"type:uuid;index;not null"`

	Type   string `gorm:"type:varchar(30);not null"`
	Actor  string `gorm:"type:varchar(30);not null"` // role name or 'system'
	Before JSONB  `gorm:"type:jsonb;default:'{}'"`
	After  JSONB  `gorm:"type:jsonb;default:'{}'"`
	Reason string `gorm:"type:text"`

	CreatedAt time.Time
}

func (e *ReservationEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
