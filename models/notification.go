package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TemplateBookingConfirmed = "booking_confirmed"
	TemplatePaymentReceived  = "payment_received"
	TemplateSessionReminder  = "session_reminder"
	TemplateBookingCancelled = "booking_cancelled"
)

type NotificationTemplate struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	StudioID uuid.UUID `gorm:"type:uuid;index;not null"`
	Type     string    `gorm:"type:varchar(30);not null"`
	Message  string    `gorm:"type:text;not null"`
	IsActive bool      `gorm:"default:true"`
	gorm.Model
}

type NotificationLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	StudioID      uuid.UUID `gorm:"type:uuid;index;not null"`
	ReservationID uuid.UUID `gorm:"type:uuid;index;not null"`
	TemplateID    uuid.UUID `gorm:"type:uuid;index"`
	Type          string    `gorm:"type:varchar(30)"`
	Message       string    `gorm:"type:text"`
	Status        string    `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage  string    `gorm:"type:text"`
	Channel       string    `gorm:"type:varchar(20)"` // whatsapp, sms
	SentAt        time.Time
	gorm.Model
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	return
}
