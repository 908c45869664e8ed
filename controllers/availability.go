// controllers/availability.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"studiopro-backend/config"
	"studiopro-backend/models"
	"studiopro-backend/services"
	"studiopro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailability enumerates every candidate slot for a date and
// duration across the studio's operating hours.
func GetAvailability(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid or missing date, expected YYYY-MM-DD")
		return
	}

	duration := 60
	if d := c.Query("duration"); d != "" {
		duration, err = strconv.Atoi(d)
		if err != nil || duration <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid duration")
			return
		}
	}
	if pkgID := c.Query("packageId"); pkgID != "" {
		var pkg models.Package
		if err := config.DB.Where("studio_id = ? AND id = ?", actor.StudioID, pkgID).
			First(&pkg).Error; err == nil && pkg.Duration > 0 {
			duration = pkg.Duration
		}
	}

	var studio models.Studio
	if err := config.DB.First(&studio, "id = ?", actor.StudioID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Studio not found")
		return
	}

	slots, err := services.NewAvailabilityChecker(config.DB).ListDaySlots(&studio, date, duration)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute availability")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"date":     date.Format("2006-01-02"),
		"duration": duration,
		"slots":    slots,
	})
}

// CheckFacilityAvailability answers a single facility/window query, used
// when picking a time for a facility-bound addon.
func CheckFacilityAvailability(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	facilityID, err := uuid.Parse(c.Query("facilityId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid or missing facilityId")
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid or missing date, expected YYYY-MM-DD")
		return
	}

	start, err := utils.ParseClock(c.Query("start"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid start time")
		return
	}
	end, err := utils.ParseClock(c.Query("end"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid end time")
		return
	}
	if end <= start {
		utils.RespondWithError(c, http.StatusBadRequest, "End time must be after start time")
		return
	}

	// The facility must belong to the caller's studio.
	var facility models.Facility
	if err := config.DB.Where("studio_id = ? AND id = ?", actor.StudioID, facilityID).
		First(&facility).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Facility not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var exclude *uuid.UUID
	if ex := c.Query("excludeReservationId"); ex != "" {
		if id, err := uuid.Parse(ex); err == nil {
			exclude = &id
		}
	}

	available, err := services.NewAvailabilityChecker(config.DB).
		IsFacilityAvailable(facilityID, date, services.Window{Start: start, End: end}, exclude)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to check facility availability")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"facilityId": facilityID,
		"date":       date.Format("2006-01-02"),
		"start":      utils.FormatClock(start),
		"end":        utils.FormatClock(end),
		"available":  available,
	})
}
