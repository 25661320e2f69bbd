package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
	"warehouse-accreditation-api/config"
	"warehouse-accreditation-api/middleware"
	"warehouse-accreditation-api/models"
	"warehouse-accreditation-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type createApplicationRequest struct {
	OperatorName string `json:"operator_name" binding:"required"`
	Locations    []struct {
		LocationName        string   `json:"location_name" binding:"required"`
		Address             string   `json:"address" binding:"required"`
		Province            *string  `json:"province"`
		StorageCapacityTons *float64 `json:"storage_capacity_tons"`
	} `json:"locations"`
}

// CreateApplication registers a new accreditation application in draft
// state.
func CreateApplication(c *gin.Context) {
	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.CurrentUser(c)

	operatorName := utils.SanitizeInput(req.OperatorName)
	if operatorName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operator name is required"})
		return
	}

	now := time.Now()
	application := models.Application{
		ApplicationNumber: fmt.Sprintf("WA-%s", uuid.NewString()[:8]),
		UserID:            userID,
		OperatorName:      operatorName,
		Status:            models.ApplicationStatusDraft,
		CreateAt:          now,
		UpdateAt:          now,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&application).Error; err != nil {
			return err
		}
		for _, loc := range req.Locations {
			location := models.ApplicationLocation{
				ApplicationID:       application.ApplicationID,
				LocationName:        loc.LocationName,
				Address:             loc.Address,
				Province:            loc.Province,
				StorageCapacityTons: loc.StorageCapacityTons,
				CreateAt:            now,
				UpdateAt:            now,
			}
			if err := tx.Create(&location).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	// Reload with locations for the response
	config.DB.Preload("Locations").First(&application, application.ApplicationID)

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application created successfully",
		"application": application,
	})
}

// GetApplications lists applications. Applicants see their own;
// reviewer roles see all of them.
func GetApplications(c *gin.Context) {
	userID, roleID := middleware.CurrentUser(c)

	query := config.DB.Where("delete_at IS NULL")
	if roleID == models.RoleApplicant {
		query = query.Where("user_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []models.Application
	if err := query.Preload("Locations").
		Order("application_id DESC").
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}

// GetApplication returns one application with its locations.
func GetApplication(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	userID, roleID := middleware.CurrentUser(c)

	query := config.DB.Where("application_id = ? AND delete_at IS NULL", applicationID)
	if roleID == models.RoleApplicant {
		query = query.Where("user_id = ?", userID)
	}

	var application models.Application
	if err := query.Preload("Locations").Preload("User").First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": application})
}
