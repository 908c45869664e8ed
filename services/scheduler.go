// services/scheduler.go
package services

import (
	"log"
	"time"

	"studiopro-backend/models"
	"studiopro-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

type ReminderScheduler struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewReminderScheduler(db *gorm.DB, notifications *NotificationService) *ReminderScheduler {
	return &ReminderScheduler{db: db, notifications: notifications}
}

// Start runs the daily session-reminder job at 9 AM: every confirmed
// reservation happening tomorrow gets a session_reminder message.
func (s *ReminderScheduler) Start() {
	c := cron.New()

	c.AddFunc("0 9 * * *", func() {
		s.SendSessionReminders()
	})

	c.Start()
	log.Println("Session reminder scheduler started")
}

func (s *ReminderScheduler) SendSessionReminders() {
	log.Println("Starting daily session reminder processing...")

	tomorrow := utils.BeginningOfDay(time.Now().AddDate(0, 0, 1))

	var reservations []models.Reservation
	if err := s.db.Where("date = ? AND status = ?", tomorrow, models.StatusConfirmed).
		Find(&reservations).Error; err != nil {
		log.Printf("Failed to fetch tomorrow's reservations: %v", err)
		return
	}

	for i := range reservations {
		s.notifications.SendReservationNotification(&reservations[i], models.TemplateSessionReminder)
	}

	log.Printf("Daily session reminder processing completed (%d reservations)", len(reservations))
}
