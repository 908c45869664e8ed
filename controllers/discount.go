// controllers/discount.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"studiopro-backend/config"
	"studiopro-backend/models"
	"studiopro-backend/services"
	"studiopro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateDiscountInput defines the expected JSON structure for creating a discount
type CreateDiscountInput struct {
	Code            string     `json:"code" binding:"required"`
	Name            string     `json:"name" binding:"required"`
	Type            string     `json:"type" binding:"required,oneof=percentage fixed_amount"`
	Value           float64    `json:"value" binding:"required,gt=0"`
	MinimumAmount   float64    `json:"minimumAmount" binding:"min=0"`
	MaximumDiscount *float64   `json:"maximumDiscount"`
	ValidFrom       *time.Time `json:"validFrom"`
	ValidUntil      *time.Time `json:"validUntil"`
	UsageLimit      *int       `json:"usageLimit"`
	Scope           string     `json:"scope" binding:"omitempty,oneof=all packages addons"`
}

// UpdateDiscountInput defines the expected JSON structure for updating a discount
type UpdateDiscountInput struct {
	Name            *string    `json:"name"`
	Value           *float64   `json:"value"`
	MinimumAmount   *float64   `json:"minimumAmount"`
	MaximumDiscount *float64   `json:"maximumDiscount"`
	ValidFrom       *time.Time `json:"validFrom"`
	ValidUntil      *time.Time `json:"validUntil"`
	UsageLimit      *int       `json:"usageLimit"`
	Scope           *string    `json:"scope" binding:"omitempty,oneof=all packages addons"`
	IsActive        *bool      `json:"isActive"`
}

// CreateDiscount creates a new discount code for the studio
func CreateDiscount(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var input CreateDiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Type == models.DiscountPercentage && input.Value > 100 {
		utils.RespondWithError(c, http.StatusBadRequest, "Percentage value cannot exceed 100")
		return
	}
	if input.Type == models.DiscountFixedAmount && input.MaximumDiscount != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Maximum discount only applies to percentage discounts")
		return
	}

	scope := input.Scope
	if scope == "" {
		scope = models.DiscountScopeAll
	}

	discount := models.Discount{
		StudioID:        actor.StudioID,
		Code:            strings.ToUpper(strings.TrimSpace(input.Code)),
		Name:            input.Name,
		Type:            input.Type,
		Value:           input.Value,
		MinimumAmount:   input.MinimumAmount,
		MaximumDiscount: input.MaximumDiscount,
		ValidFrom:       input.ValidFrom,
		ValidUntil:      input.ValidUntil,
		UsageLimit:      input.UsageLimit,
		Scope:           scope,
		IsActive:        true,
	}

	if err := config.DB.Create(&discount).Error; err != nil {
		if strings.Contains(err.Error(), "idx_studio_code") {
			utils.RespondWithError(c, http.StatusConflict, "Discount code already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create discount")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, discount)
}

// GetDiscounts retrieves all discounts for the studio
func GetDiscounts(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var discounts []models.Discount
	if err := config.DB.Where("studio_id = ?", actor.StudioID).Find(&discounts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve discounts")
		return
	}

	utils.RespondWithData(c, http.StatusOK, discounts)
}

// UpdateDiscount updates an existing discount
func UpdateDiscount(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	discountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid discount ID format")
		return
	}

	var input UpdateDiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var discount models.Discount
	if err := config.DB.Where("studio_id = ? AND id = ?", actor.StudioID, discountID).
		First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Discount not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		discount.Name = *input.Name
	}
	if input.Value != nil {
		discount.Value = *input.Value
	}
	if input.MinimumAmount != nil {
		discount.MinimumAmount = *input.MinimumAmount
	}
	if input.MaximumDiscount != nil {
		discount.MaximumDiscount = input.MaximumDiscount
	}
	if input.ValidFrom != nil {
		discount.ValidFrom = input.ValidFrom
	}
	if input.ValidUntil != nil {
		discount.ValidUntil = input.ValidUntil
	}
	if input.UsageLimit != nil {
		discount.UsageLimit = input.UsageLimit
	}
	if input.Scope != nil {
		discount.Scope = *input.Scope
	}
	if input.IsActive != nil {
		discount.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&discount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update discount")
		return
	}

	utils.RespondWithData(c, http.StatusOK, discount)
}

// DeleteDiscount soft deletes a discount; reservations that referenced
// it keep their recorded discount amount.
func DeleteDiscount(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	discountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid discount ID format")
		return
	}

	result := config.DB.Where("studio_id = ? AND id = ?", actor.StudioID, discountID).
		Delete(&models.Discount{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete discount")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Discount not found")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{"message": "Discount deleted successfully"})
}

type ValidateDiscountInput struct {
	Code         string  `json:"code" binding:"required"`
	PackagePrice float64 `json:"packagePrice" binding:"required,gt=0"`
	AddonTotal   float64 `json:"addonTotal" binding:"min=0"`
}

// ValidateDiscountCode previews a discount against a candidate subtotal
// without consuming a use.
func ValidateDiscountCode(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var input ValidateDiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var discount models.Discount
	if err := config.DB.Where("studio_id = ? AND code = ?", actor.StudioID, strings.ToUpper(strings.TrimSpace(input.Code))).
		First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithData(c, http.StatusOK, services.DiscountResult{Reason: "discount code not found"})
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	base := services.DiscountBase{PackagePrice: input.PackagePrice, AddonTotal: input.AddonTotal}
	result := services.ValidateDiscount(&discount, base, actor.StudioID, time.Now())
	utils.RespondWithData(c, http.StatusOK, result)
}
