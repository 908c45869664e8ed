// controllers/context.go
package controllers

import (
	"errors"
	"net/http"

	"studiopro-backend/config"
	"studiopro-backend/services"
	"studiopro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func bookingSvc() *services.BookingService {
	return services.NewBookingService(config.DB)
}

func notificationSvc() *services.NotificationService {
	return services.NewNotificationService(config.DB)
}

// getActor resolves the ActorContext from the JWT middleware values. The
// engine trusts this; it never re-reads the session.
func getActor(c *gin.Context) (services.ActorContext, bool) {
	studioID, exists := c.Get("studioId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Studio ID not found in context")
		return services.ActorContext{}, false
	}
	studioUUID, err := uuid.Parse(studioID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid studio ID format")
		return services.ActorContext{}, false
	}

	actor := services.ActorContext{StudioID: studioUUID}
	if role, ok := c.Get("role"); ok {
		if s, ok := role.(string); ok {
			actor.Role = s
		}
	}
	if userID, ok := c.Get("userId"); ok {
		if s, ok := userID.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				actor.UserID = id
			}
		}
	}
	return actor, true
}

// respondEngineError maps engine errors onto the right HTTP shape:
// policy denials are 422 with the reason, conflicts are 409 so the
// client can offer another slot, everything else is a plain failure.
func respondEngineError(c *gin.Context, err error) {
	var denial *services.DeniedError
	switch {
	case errors.As(err, &denial):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, denial.Reason)
	case errors.Is(err, services.ErrSlotConflict),
		errors.Is(err, services.ErrFacilityConflict),
		errors.Is(err, services.ErrSlotHeld):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Reservation not found")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}
