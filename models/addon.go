package models

import (
	"github.com/google/uuid"
)

type Addon struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	StudioID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"not null"`
	Description string
	Price       float64 `gorm:"type:decimal(10,2);not null"`
	Unit        string  `gorm:"default:'pcs'"`

	// Hourly addons bound to a facility carry their own time window on
	// the reservation and consume the facility for that window.
	IsHourly   bool       `gorm:"default:false"`
	FacilityID *uuid.UUID `gorm:"type:uuid;index"`

	IsActive bool `gorm:"default:true"`

	Facility *Facility `gorm:"foreignKey:FacilityID"`
}

// Facility is a shared physical resource (makeup room, studio B, etc.)
// that at most one facility-bound addon may occupy at a time.
type Facility struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	StudioID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name     string    `gorm:"not null"`
	IsActive bool      `gorm:"default:true"`
}
