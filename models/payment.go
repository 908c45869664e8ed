package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentKindDeposit    = "deposit"
	PaymentKindSettlement = "settlement"
	PaymentKindFull       = "full"
)

type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	ReservationID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_payment_ref,priority:1"`

	Amount float64 `gorm:"type:decimal(10,2);not null"`
	Kind   string  `gorm:"type:varchar(20);not null"` // deposit, settlement, full
	Status string  `gorm:"type:varchar(20);default:'pending'"`
	Method string
	// Reference assigned by the payment gateway, nil for cash. Unique
	// per reservation so a redelivered gateway event cannot insert a
	// second row even under concurrent retries.
	ExternalRef *string `gorm:"uniqueIndex:idx_payment_ref,priority:2"`
	PaidAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
