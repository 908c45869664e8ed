package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"studiopro-backend/config"
	"studiopro-backend/models"
	"studiopro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Password      string `json:"password" binding:"required,min=8"`
	StudioName    string `json:"studioName" binding:"required"`
	StudioAddress string `json:"studioAddress"`
	OpenTime      string `json:"openTime"`
	CloseTime     string `json:"closeTime"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

// Register creates a studio and its admin user in one step
func Register(c *gin.Context) {
	var input RegisterInput

	// Bind and validate input
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Check if email or phone already exists
	var existingUser models.User
	result := config.DB.Where("email = ? OR phone = ?", input.Email, input.Phone).First(&existingUser)

	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	studio := models.Studio{
		ID:      uuid.New(),
		Name:    input.StudioName,
		Address: input.StudioAddress,
		Phone:   input.Phone,
	}
	if input.OpenTime != "" {
		if _, err := utils.ParseClock(input.OpenTime); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid open time")
			return
		}
		studio.OpenTime = input.OpenTime
	}
	if input.CloseTime != "" {
		if _, err := utils.ParseClock(input.CloseTime); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid close time")
			return
		}
		studio.CloseTime = input.CloseTime
	}

	newUser := models.User{
		Email:    input.Email,
		Phone:    input.Phone,
		Name:     input.Name,
		Password: input.Password, // Will be hashed in BeforeCreate hook
		Role:     models.RoleAdmin,
		StudioID: studio.ID,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&studio).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create studio")
		return
	}
	if err := tx.Create(&newUser).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if err := createDefaultTemplates(tx, studio.ID); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create templates")
		return
	}
	tx.Commit()

	// Generate token
	token, err := utils.GenerateToken(newUser.ID.String(), studio.ID.String(), newUser.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	expiryHours := 24
	maxAge := expiryHours * 3600

	c.SetCookie(
		"token",
		token,
		maxAge,
		"/",
		"",
		true,
		true,
	)

	// Return response without password
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":         newUser.ID,
			"email":      newUser.Email,
			"phone":      newUser.Phone,
			"role":       newUser.Role,
			"studioName": studio.Name,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// Clean identifier
	identifier := strings.TrimSpace(input.Identifier)

	// Determine if identifier is email or phone
	var user models.User
	query := config.DB.Where("email = ? OR phone = ?", identifier, identifier)
	result := query.First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Check password
	if !utils.CheckPasswordHash(input.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Generate token
	token, err := utils.GenerateToken(user.ID.String(), user.StudioID.String(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// Update last login
	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	expiryHours := 24
	maxAge := expiryHours * 3600

	c.SetCookie(
		"token",
		token,
		maxAge,
		"/",
		"",
		true,
		true,
	)

	// Return response
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"phone": user.Phone,
			"role":  user.Role,
		},
	})
}

func createDefaultTemplates(tx *gorm.DB, studioID uuid.UUID) error {
	defaultTemplates := []models.NotificationTemplate{
		{
			StudioID: studioID,
			Type:     models.TemplateBookingConfirmed,
			Message:  "Hi [CustomerName], your booking [BookingCode] on [Date] at [StartTime] is confirmed. See you at the studio!",
		},
		{
			StudioID: studioID,
			Type:     models.TemplatePaymentReceived,
			Message:  "Hi [CustomerName], we received your payment for booking [BookingCode]. Remaining balance: [RemainingAmount].",
		},
		{
			StudioID: studioID,
			Type:     models.TemplateSessionReminder,
			Message:  "Hi [CustomerName], a reminder for your session [BookingCode] tomorrow at [StartTime]. Reply here if you need anything!",
		},
		{
			StudioID: studioID,
			Type:     models.TemplateBookingCancelled,
			Message:  "Hi [CustomerName], your booking [BookingCode] on [Date] has been cancelled.",
		},
	}

	for _, template := range defaultTemplates {
		template.ID = uuid.New()
		if err := tx.Create(&template).Error; err != nil {
			return err
		}
	}
	return nil
}

func Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	var user models.User
	if err := config.DB.Preload("Studio").First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	// Return user info
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"role":       user.Role,
			"studioName": user.Studio.Name,
		},
	})
}
