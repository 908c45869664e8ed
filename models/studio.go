package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

type Studio struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"not null"`
	Address string
	Phone   string

	// Daily operating window, e.g. "09:00" - "21:00". Slot enumeration
	// walks this window in SlotMinutes steps.
	OpenTime    string `gorm:"type:varchar(5);default:'09:00'"`
	CloseTime   string `gorm:"type:varchar(5);default:'21:00'"`
	SlotMinutes int    `gorm:"default:60"`

	WorkingHours          JSONB `gorm:"type:jsonb;default:'{}'"`
	WhatsAppNotifications bool  `gorm:"default:true"`

	Users        []User        `gorm:"foreignKey:StudioID"`
	Customers    []Customer    `gorm:"foreignKey:StudioID"`
	Packages     []Package     `gorm:"foreignKey:StudioID"`
	Addons       []Addon       `gorm:"foreignKey:StudioID"`
	Facilities   []Facility    `gorm:"foreignKey:StudioID"`
	Discounts    []Discount    `gorm:"foreignKey:StudioID"`
	Reservations []Reservation `gorm:"foreignKey:StudioID"`
}

// Custom JSONB type for per-day working hour overrides
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &j)
}
