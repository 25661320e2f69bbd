package controllers

import (
	"net/http"
	"strconv"
	"warehouse-accreditation-api/config"
	"warehouse-accreditation-api/middleware"
	"warehouse-accreditation-api/models"
	"warehouse-accreditation-api/services"

	"github.com/gin-gonic/gin"
)

// GetAssignments lists assignments. Reviewers see their own queue;
// officers and admins can filter across all of them.
func GetAssignments(c *gin.Context) {
	userID, roleID := middleware.CurrentUser(c)

	query := config.DB.Model(&models.Assignment{})
	if roleID != models.RoleOfficer && roleID != models.RoleAdmin {
		query = query.Where("assigned_to = ?", userID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if applicationID := c.Query("application_id"); applicationID != "" {
		query = query.Where("application_id = ?", applicationID)
	}

	var assignments []models.Assignment
	if err := query.Order("assignment_id DESC").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": assignments,
		"total":       len(assignments),
	})
}

// GetAssignment returns one assignment with its live sections and
// fields.
func GetAssignment(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	userID, roleID := middleware.CurrentUser(c)

	var assignment models.Assignment
	if err := config.DB.Preload("Sections.Fields").
		Where("assignment_id = ?", assignmentID).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}

	if roleID != models.RoleOfficer && roleID != models.RoleAdmin &&
		assignment.AssignedTo != userID && assignment.AssignedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// GetAssignmentChain returns the delegation path leading to an
// assignment, oldest first.
func GetAssignmentChain(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	chain, err := services.AssignmentChain(config.DB, assignmentID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chain": chain,
		"total": len(chain),
	})
}

// GetApplicationHistory returns the archived review cycles of an
// application, oldest first, each with its section and field snapshots.
func GetApplicationHistory(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	userID, roleID := middleware.CurrentUser(c)
	if roleID == models.RoleApplicant {
		var application models.Application
		if err := config.DB.Where("application_id = ? AND user_id = ? AND delete_at IS NULL",
			applicationID, userID).First(&application).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
	}

	cycles, err := services.LoadArchivedCycles(config.DB, applicationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cycles": cycles,
		"total":  len(cycles),
	})
}

// GetApplicationRejections lists the rejection records of an
// application, newest first.
func GetApplicationRejections(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	userID, roleID := middleware.CurrentUser(c)
	if roleID == models.RoleApplicant {
		var application models.Application
		if err := config.DB.Where("application_id = ? AND user_id = ? AND delete_at IS NULL",
			applicationID, userID).First(&application).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
	}

	var rejections []models.ApplicationRejection
	if err := config.DB.Where("application_id = ?", applicationID).
		Order("rejection_id DESC").
		Find(&rejections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rejections"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rejections": rejections,
		"total":      len(rejections),
	})
}
