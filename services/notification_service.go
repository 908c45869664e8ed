// services/notification_service.go
package services

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"studiopro-backend/models"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type NotificationService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &NotificationService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// MessageData is the flat, denormalized reservation shape templates are
// rendered against.
type MessageData struct {
	CustomerName    string
	CustomerPhone   string
	BookingCode     string
	Date            string
	StartTime       string
	EndTime         string
	TotalAmount     float64
	DPAmount        float64
	RemainingAmount float64
}

// FlattenReservation projects a reservation into MessageData.
func FlattenReservation(r *models.Reservation) MessageData {
	return MessageData{
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		BookingCode:     r.BookingCode,
		Date:            r.Date.Format("02 Jan 2006"),
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		TotalAmount:     r.TotalAmount,
		DPAmount:        r.DPAmount,
		RemainingAmount: r.RemainingAmount,
	}
}

func renderTemplate(message string, data MessageData) string {
	replacer := strings.NewReplacer(
		"[CustomerName]", data.CustomerName,
		"[BookingCode]", data.BookingCode,
		"[Date]", data.Date,
		"[StartTime]", data.StartTime,
		"[EndTime]", data.EndTime,
		"[TotalAmount]", strconv.FormatFloat(data.TotalAmount, 'f', 0, 64),
		"[DPAmount]", strconv.FormatFloat(data.DPAmount, 'f', 0, 64),
		"[RemainingAmount]", strconv.FormatFloat(data.RemainingAmount, 'f', 0, 64),
	)
	return replacer.Replace(message)
}

// SendReservationNotification renders the studio's template of the given
// type and sends it over WhatsApp (or SMS for non-E.164 numbers),
// logging the outcome either way.
func (s *NotificationService) SendReservationNotification(r *models.Reservation, templateType string) {
	var studio models.Studio
	if err := s.db.First(&studio, "id = ?", r.StudioID).Error; err != nil {
		log.Printf("Studio %s not found for notification: %v", r.StudioID, err)
		return
	}
	if !studio.WhatsAppNotifications {
		return
	}

	var template models.NotificationTemplate
	if err := s.db.Where("studio_id = ? AND type = ? AND is_active = true", r.StudioID, templateType).
		First(&template).Error; err != nil {
		log.Printf("Studio %s: no active template for %s: %v", r.StudioID, templateType, err)
		return
	}

	data := FlattenReservation(r)
	message := renderTemplate(template.Message, data)

	// Determine channel (WhatsApp if available, else SMS)
	channel := "sms"
	var to string
	if strings.HasPrefix(data.CustomerPhone, "+") {
		to = "whatsapp:" + data.CustomerPhone
		channel = "whatsapp"
	} else {
		to = data.CustomerPhone
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)

	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send message to %s: %v", data.CustomerPhone, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Message sent to %s, SID: %s", data.CustomerPhone, *resp.Sid)
	} else {
		log.Printf("Message sent to %s, but no SID returned", data.CustomerPhone)
	}

	notificationLog := models.NotificationLog{
		StudioID:      r.StudioID,
		ReservationID: r.ID,
		TemplateID:    template.ID,
		Type:          templateType,
		Message:       message,
		Status:        status,
		ErrorMessage:  errorMsg,
		Channel:       channel,
		SentAt:        time.Now(),
	}

	if err := s.db.Create(&notificationLog).Error; err != nil {
		log.Printf("Failed to log notification for reservation %s: %v", r.ID, err)
	}
}
