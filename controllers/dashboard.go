// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"studiopro-backend/config"
	"studiopro-backend/models"
	"studiopro-backend/utils"

	"github.com/gin-gonic/gin"
)

type TodaySession struct {
	BookingCode  string `json:"bookingCode"`
	CustomerName string `json:"customerName"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Status       string `json:"status"`
}

type PendingPayment struct {
	BookingCode     string  `json:"bookingCode"`
	CustomerName    string  `json:"customerName"`
	Date            string  `json:"date"`
	RemainingAmount float64 `json:"remainingAmount"`
}

// GetDashboardOverview summarizes today's sessions, outstanding
// balances, and this month's revenue for the studio.
func GetDashboardOverview(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	now := time.Now()
	today := utils.BeginningOfDay(now)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// Today's sessions
	var todayRows []models.Reservation
	config.DB.Where("studio_id = ? AND date = ? AND status IN ?",
		actor.StudioID, today,
		[]models.ReservationStatus{models.StatusConfirmed, models.StatusInProgress, models.StatusCompleted}).
		Order("start_time ASC").Find(&todayRows)

	todaySessions := make([]TodaySession, 0, len(todayRows))
	for _, r := range todayRows {
		todaySessions = append(todaySessions, TodaySession{
			BookingCode:  r.BookingCode,
			CustomerName: r.CustomerName,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			Status:       string(r.Status),
		})
	}

	// This month's collected revenue
	var monthlyRevenue float64
	config.DB.Model(&models.Payment{}).
		Joins("JOIN reservations ON reservations.id = payments.reservation_id").
		Where("reservations.studio_id = ? AND payments.status = ? AND payments.paid_at >= ?",
			actor.StudioID, string(models.PayPaid), firstOfMonth).
		Select("COALESCE(SUM(payments.amount), 0)").Scan(&monthlyRevenue)

	// Upcoming reservations still carrying a balance
	var partialRows []models.Reservation
	config.DB.Where("studio_id = ? AND payment_status = ? AND date >= ? AND status IN ?",
		actor.StudioID, models.PayPartial, today,
		[]models.ReservationStatus{models.StatusPending, models.StatusConfirmed}).
		Order("date ASC").Limit(10).Find(&partialRows)

	pendingPayments := make([]PendingPayment, 0, len(partialRows))
	for _, r := range partialRows {
		pendingPayments = append(pendingPayments, PendingPayment{
			BookingCode:     r.BookingCode,
			CustomerName:    r.CustomerName,
			Date:            r.Date.Format("2006-01-02"),
			RemainingAmount: r.RemainingAmount,
		})
	}

	// Headline counters
	var totalCustomers, pendingCount, upcomingCount int64
	config.DB.Model(&models.Customer{}).
		Where("studio_id = ? AND deleted_at IS NULL", actor.StudioID).Count(&totalCustomers)
	config.DB.Model(&models.Reservation{}).
		Where("studio_id = ? AND status = ?", actor.StudioID, models.StatusPending).Count(&pendingCount)
	config.DB.Model(&models.Reservation{}).
		Where("studio_id = ? AND date >= ? AND status IN ?", actor.StudioID, today,
			[]models.ReservationStatus{models.StatusConfirmed, models.StatusPending}).Count(&upcomingCount)

	c.JSON(http.StatusOK, gin.H{
		"totalCustomers":      totalCustomers,
		"pendingReservations": pendingCount,
		"upcomingSessions":    upcomingCount,
		"monthlyRevenue":      monthlyRevenue,
		"todaySessions":       todaySessions,
		"pendingPayments":     pendingPayments,
	})
}
