package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DiscountPercentage  = "percentage"
	DiscountFixedAmount = "fixed_amount"
)

const (
	DiscountScopeAll      = "all"
	DiscountScopePackages = "packages"
	DiscountScopeAddons   = "addons"
)

type Discount struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	StudioID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_studio_code,priority:1"`

	Code string `gorm:"not null;uniqueIndex:idx_studio_code,priority:2"`
	Name string `gorm:"not null"`
	Type string `gorm:"type:varchar(20);not null"` // 'percentage' or 'fixed_amount'

	// Percentage value (0-100) or fixed currency amount, depending on Type.
	Value         float64 `gorm:"type:decimal(10,2);not null"`
	MinimumAmount float64 `gorm:"type:decimal(10,2);default:0.0"`
	// Cap for percentage discounts. Nil means uncapped.
	MaximumDiscount *float64

	// Open-ended when nil.
	ValidFrom  *time.Time
	ValidUntil *time.Time

	// Nil means unlimited.
	UsageLimit *int
	UsedCount  int `gorm:"default:0"`

	Scope    string `gorm:"type:varchar(20);default:'all'"` // all, packages, addons
	IsActive bool   `gorm:"default:true"`

	gorm.Model
}

func (d *Discount) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
