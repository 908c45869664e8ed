package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	StudioID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_studio_phone,priority:1"`

	Name     string `gorm:"not null"`
	Phone    string `gorm:"not null;uniqueIndex:idx_studio_phone,priority:2"`
	Email    string
	IsGuest  bool `gorm:"default:false"`
	Notes    string
	IsActive bool `gorm:"default:true"`

	TotalBookings int     `gorm:"default:0"`
	TotalSpent    float64 `gorm:"type:decimal(10,2);default:0.0"`
	LastBooking   *time.Time

	Reservations []Reservation `gorm:"foreignKey:CustomerID"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
