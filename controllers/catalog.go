// controllers/catalog.go
package controllers

import (
	"errors"
	"net/http"

	"studiopro-backend/config"
	"studiopro-backend/models"
	"studiopro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePackageInput defines the expected JSON structure for creating a package
type CreatePackageInput struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"required,min=0"`
	Duration     int     `json:"duration" binding:"required,min=15"` // in minutes
	Category     string  `json:"category"`
	DPPercentage *int    `json:"dpPercentage" binding:"omitempty,min=1,max=100"`
}

// UpdatePackageInput defines the expected JSON structure for updating a package
type UpdatePackageInput struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Duration     *int     `json:"duration"`
	Category     *string  `json:"category"`
	DPPercentage *int     `json:"dpPercentage" binding:"omitempty,min=1,max=100"`
	IsActive     *bool    `json:"isActive"`
}

// PackageAddonInput configures how an addon is bundled with a package
type PackageAddonInput struct {
	AddonID         uuid.UUID `json:"addonId" binding:"required"`
	Included        bool      `json:"included"`
	DiscountedPrice *float64  `json:"discountedPrice"`
}

// CreatePackage creates a new package for the studio
func CreatePackage(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var input CreatePackageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	pkg := models.Package{
		ID:           uuid.New(),
		StudioID:     actor.StudioID,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		Duration:     input.Duration,
		Category:     input.Category,
		DPPercentage: input.DPPercentage,
		IsActive:     true,
	}

	if err := config.DB.Create(&pkg).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create package")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, pkg)
}

// GetPackages retrieves all packages for the studio
func GetPackages(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var packages []models.Package
	if err := config.DB.Preload("Addons.Addon").
		Where("studio_id = ?", actor.StudioID).Find(&packages).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve packages")
		return
	}

	utils.RespondWithData(c, http.StatusOK, packages)
}

// UpdatePackage updates an existing package
func UpdatePackage(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid package ID format")
		return
	}

	var input UpdatePackageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var pkg models.Package
	if err := config.DB.Where("studio_id = ? AND id = ?", actor.StudioID, packageID).
		First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Package not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		pkg.Name = *input.Name
	}
	if input.Description != nil {
		pkg.Description = *input.Description
	}
	if input.Price != nil {
		pkg.Price = *input.Price
	}
	if input.Duration != nil {
		pkg.Duration = *input.Duration
	}
	if input.Category != nil {
		pkg.Category = *input.Category
	}
	if input.DPPercentage != nil {
		pkg.DPPercentage = input.DPPercentage
	}
	if input.IsActive != nil {
		pkg.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&pkg).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update package")
		return
	}

	utils.RespondWithData(c, http.StatusOK, pkg)
}

// SetPackageAddons replaces a package's addon bundle configuration
func SetPackageAddons(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid package ID format")
		return
	}

	var inputs []PackageAddonInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var pkg models.Package
	if err := config.DB.Where("studio_id = ? AND id = ?", actor.StudioID, packageID).
		First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Package not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("package_id = ?", pkg.ID).Delete(&models.PackageAddon{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to clear existing bundle")
		return
	}

	for _, in := range inputs {
		var addon models.Addon
		if err := tx.Where("studio_id = ? AND id = ?", actor.StudioID, in.AddonID).
			First(&addon).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Addon not found: "+in.AddonID.String())
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}

		pa := models.PackageAddon{
			ID:              uuid.New(),
			PackageID:       pkg.ID,
			AddonID:         addon.ID,
			Included:        in.Included,
			DiscountedPrice: in.DiscountedPrice,
		}
		if err := tx.Create(&pa).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save bundle")
			return
		}
	}

	tx.Commit()

	config.DB.Preload("Addons.Addon").First(&pkg, "id = ?", pkg.ID)
	utils.RespondWithData(c, http.StatusOK, pkg)
}

// CreateAddonInput defines the expected JSON structure for creating an addon
type CreateAddonInput struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Price       float64    `json:"price" binding:"required,min=0"`
	Unit        string     `json:"unit"`
	IsHourly    bool       `json:"isHourly"`
	FacilityID  *uuid.UUID `json:"facilityId"`
}

// CreateAddon creates a new addon for the studio
func CreateAddon(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var input CreateAddonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.FacilityID != nil {
		if !input.IsHourly {
			utils.RespondWithError(c, http.StatusBadRequest, "Facility-bound addons must be hourly")
			return
		}
		var facility models.Facility
		if err := config.DB.Where("studio_id = ? AND id = ?", actor.StudioID, *input.FacilityID).
			First(&facility).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Facility not found")
			return
		}
	}

	addon := models.Addon{
		ID:          uuid.New(),
		StudioID:    actor.StudioID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Unit:        input.Unit,
		IsHourly:    input.IsHourly,
		FacilityID:  input.FacilityID,
		IsActive:    true,
	}
	if addon.Unit == "" {
		addon.Unit = "pcs"
	}

	if err := config.DB.Create(&addon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create addon")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, addon)
}

// GetAddons retrieves all addons for the studio
func GetAddons(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var addons []models.Addon
	if err := config.DB.Preload("Facility").
		Where("studio_id = ?", actor.StudioID).Find(&addons).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve addons")
		return
	}

	utils.RespondWithData(c, http.StatusOK, addons)
}

// CreateFacilityInput defines the expected JSON structure for creating a facility
type CreateFacilityInput struct {
	Name string `json:"name" binding:"required"`
}

// CreateFacility creates a new facility for the studio
func CreateFacility(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var input CreateFacilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	facility := models.Facility{
		ID:       uuid.New(),
		StudioID: actor.StudioID,
		Name:     input.Name,
		IsActive: true,
	}

	if err := config.DB.Create(&facility).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create facility")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, facility)
}

// GetFacilities retrieves all facilities for the studio
func GetFacilities(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var facilities []models.Facility
	if err := config.DB.Where("studio_id = ?", actor.StudioID).Find(&facilities).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve facilities")
		return
	}

	utils.RespondWithData(c, http.StatusOK, facilities)
}
