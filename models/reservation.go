package models

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusInProgress ReservationStatus = "in_progress"
	StatusCompleted  ReservationStatus = "completed"
	StatusCancelled  ReservationStatus = "cancelled"
	StatusNoShow     ReservationStatus = "no_show"
)

type PaymentState string

const (
	PayPending   PaymentState = "pending"
	PayPartial   PaymentState = "partial"
	PayPaid      PaymentState = "paid"
	PayFailed    PaymentState = "failed"
	PayCancelled PaymentState = "cancelled"
	PayRefunded  PaymentState = "refunded"
)

const (
	PaymentOptionDeposit = "deposit"
	PaymentOptionFull    = "full"
)

type Reservation struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	StudioID uuid.UUID `gorm:"type:uuid;index;not null"`

	BookingCode string `gorm:"uniqueIndex;not null"`

	// Customer snapshot; CustomerID is nil for walk-in guests that were
	// never registered.
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName  string     `gorm:"not null"`
	CustomerPhone string     `gorm:"not null"`
	IsGuest       bool       `gorm:"default:false"`

	PackageID uuid.UUID `gorm:"type:uuid;index;not null"`

	Date      time.Time `gorm:"type:date;index;not null"`
	StartTime string    `gorm:"type:varchar(5);not null"` // "HH:MM"
	EndTime   string    `gorm:"type:varchar(5);not null"`
	Duration  int       // total minutes, primary window

	PackagePrice   float64 `gorm:"type:decimal(10,2);not null"`
	AddonTotal     float64 `gorm:"type:decimal(10,2);default:0.0"`
	Subtotal       float64 `gorm:"type:decimal(10,2);not null"`
	TaxAmount      float64 `gorm:"type:decimal(10,2);default:0.0"`
	DiscountAmount float64 `gorm:"type:decimal(10,2);default:0.0"`
	TotalAmount    float64 `gorm:"type:decimal(10,2);not null"`
	DPAmount       float64 `gorm:"type:decimal(10,2);default:0.0"`
	RemainingAmount float64 `gorm:"type:decimal(10,2);default:0.0"`

	DiscountID *uuid.UUID `gorm:"type:uuid;index"`

	Status        ReservationStatus `gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus PaymentState      `gorm:"type:varchar(20);default:'pending'"`
	PaymentOption string            `gorm:"type:varchar(10);default:'deposit'"` // 'deposit' or 'full'

	// Set for manual staff bookings, nil for self-service ones.
	CreatedByUserID *uuid.UUID `gorm:"type:uuid;index"`

	Notes string `gorm:"type:text"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	Addons   []ReservationAddon `gorm:"foreignKey:ReservationID"`
	Payments []Payment          `gorm:"foreignKey:ReservationID"`
	Events   []ReservationEvent `gorm:"foreignKey:ReservationID"`
	Discount *Discount          `gorm:"foreignKey:DiscountID"`
	Package  Package            `gorm:"foreignKey:PackageID"`
}

type ReservationAddon struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ReservationID uuid.UUID `gorm:"type:uuid;index;not null"`
	AddonID       uuid.UUID `gorm:"type:uuid;index;not null"`

	AddonName  string  `gorm:"not null"`
	Quantity   int     `gorm:"default:1"`
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null"`
	TotalPrice float64 `gorm:"type:decimal(10,2);not null"`
	Included   bool    `gorm:"default:false"`

	// Facility-bound hourly addons carry their own window, which may
	// differ from the reservation's primary window.
	FacilityID    *uuid.UUID `gorm:"type:uuid;index"`
	StartTime     string     `gorm:"type:varchar(5)"`
	EndTime       string     `gorm:"type:varchar(5)"`
	DurationHours int

	// Set after a reschedule leaves this addon's window outside the new
	// primary window; the caller must pick a new window explicitly.
	NeedsTimeAdjustment bool `gorm:"default:false"`
}
