package models

import (
	"github.com/google/uuid"
)

type Package struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	StudioID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"not null"`
	Description string
	Price       float64 `gorm:"type:decimal(10,2);not null"`
	Duration    int     // in minutes
	Category    string  `gorm:"default:'General'"`

	// Minimum deposit as a percentage of the total. Nil means the
	// platform default of 50 applies.
	DPPercentage *int

	IsActive bool `gorm:"default:true"`

	Addons []PackageAddon `gorm:"foreignKey:PackageID"`
}

// PackageAddon links an addon to a package, optionally bundling it for
// free or at a package-specific discounted unit price.
type PackageAddon struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	PackageID uuid.UUID `gorm:"type:uuid;index;not null"`
	AddonID   uuid.UUID `gorm:"type:uuid;index;not null"`

	Included        bool `gorm:"default:false"`
	DiscountedPrice *float64

	Addon Addon `gorm:"foreignKey:AddonID"`
}
