package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"warehouse-accreditation-api/config"
	"warehouse-accreditation-api/middleware"
	"warehouse-accreditation-api/models"
	"warehouse-accreditation-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondWorkflowError maps the workflow error taxonomy onto HTTP
// statuses. Unknown errors fall through as 500 without leaking
// internals.
func respondWorkflowError(c *gin.Context, err error) {
	var (
		activeExists  *services.ActiveAssignmentExistsError
		duplicate     *services.DuplicateSectionError
		invalid       *services.InvalidTransitionError
		incomplete    *services.IncompleteReviewError
		notUnlocked   *services.SectionNotUnlockedError
		alreadyClosed *services.AssignmentAlreadyClosedError
	)

	switch {
	case errors.As(err, &activeExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &alreadyClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &incomplete):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          err.Error(),
			"pending_fields": incomplete.PendingFields,
		})
	case errors.As(err, &notUnlocked):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotAssignedReviewer):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

type delegateReviewRequest struct {
	ApplicationLocationID *int                         `json:"application_location_id"`
	Level                 string                       `json:"level"`
	AssignedTo            int                          `json:"assigned_to"`
	Sections              []services.SectionDefinition `json:"sections" binding:"required,min=1"`
}

// DelegateReview opens a review chain for an application.
func DelegateReview(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req delegateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, roleID := middleware.CurrentUser(c)
	svc := services.NewWorkflowService(config.DB)

	assignment, err := svc.DelegateReview(services.DelegateReviewInput{
		ApplicationID:         applicationID,
		ApplicationLocationID: req.ApplicationLocationID,
		ActorID:               userID,
		ActorRoleID:           roleID,
		Level:                 req.Level,
		AssignedTo:            req.AssignedTo,
		Sections:              req.Sections,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Review delegated successfully",
		"assignment": assignment,
	})
}

type fieldDecisionsRequest struct {
	Decisions []services.FieldDecisionInput `json:"decisions" binding:"required,min=1"`
}

// SubmitFieldDecisions records a batch of per-field decisions.
func SubmitFieldDecisions(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	var req fieldDecisionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.CurrentUser(c)
	svc := services.NewWorkflowService(config.DB)

	if err := svc.SubmitFieldDecisions(assignmentID, userID, req.Decisions); err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Decisions recorded successfully"})
}

// SubmitReview closes the decision phase of an assignment.
func SubmitReview(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	userID, _ := middleware.CurrentUser(c)
	svc := services.NewWorkflowService(config.DB)

	if err := svc.SubmitReview(assignmentID, userID); err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review submitted successfully"})
}

type finalizeRequest struct {
	Reason               string `json:"reason"`
	SupportingDocumentID *int   `json:"supporting_document_id"`
}

// FinalizeAssignment archives a submitted cycle and opens the follow-up
// assignment the outcome calls for.
func FinalizeAssignment(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	// Body is optional; without one the rejection reason falls back to
	// the reviewer remarks.
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = finalizeRequest{}
	}

	userID, _ := middleware.CurrentUser(c)
	svc := services.NewWorkflowService(config.DB)

	result, err := svc.CloseCycle(assignmentID, userID, req.Reason, req.SupportingDocumentID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	response := gin.H{
		"message":      "Assignment finalized successfully",
		"final_status": result.FinalStatus,
		"assignment":   result.Assignment,
	}
	if result.NextAssignment != nil {
		response["next_assignment"] = result.NextAssignment
	}
	if result.Rejection != nil {
		response["rejection"] = result.Rejection
	}
	c.JSON(http.StatusOK, response)
}

type unlockRequestBody struct {
	SectionType          string `json:"section_type" binding:"required"`
	ResourceID           int    `json:"resource_id" binding:"required"`
	ResourceType         string `json:"resource_type" binding:"required"`
	Reason               string `json:"reason" binding:"required"`
	SupportingDocumentID *int   `json:"supporting_document_id"`
}

// RequestUnlock lets the applicant ask to reopen a locked section.
func RequestUnlock(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req unlockRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.CurrentUser(c)

	// Only the application owner may request an unlock.
	var application models.Application
	if err := config.DB.Where("application_id = ? AND user_id = ? AND delete_at IS NULL",
		applicationID, userID).First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	svc := services.NewWorkflowService(config.DB)
	request, assignment, err := svc.RequestUnlock(services.RequestUnlockInput{
		ApplicationID:        applicationID,
		RequestedBy:          userID,
		SectionType:          req.SectionType,
		ResourceID:           req.ResourceID,
		ResourceType:         req.ResourceType,
		Reason:               req.Reason,
		SupportingDocumentID: req.SupportingDocumentID,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Unlock request submitted",
		"unlock_request": request,
		"assignment":     assignment,
	})
}

type resubmissionRequest struct {
	WarehouseLocationID  *int   `json:"warehouse_location_id"`
	AssignmentSectionID  int    `json:"assignment_section_id" binding:"required"`
	SectionType          string `json:"section_type" binding:"required"`
	ResourceID           int    `json:"resource_id" binding:"required"`
	SupportingDocumentID *int   `json:"supporting_document_id"`
}

// RecordResubmission flags a corrected section for re-review.
func RecordResubmission(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req resubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.CurrentUser(c)

	var application models.Application
	if err := config.DB.Where("application_id = ? AND user_id = ? AND delete_at IS NULL",
		applicationID, userID).First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	svc := services.NewWorkflowService(config.DB)
	resubmission, err := svc.RecordResubmission(services.RecordResubmissionInput{
		ApplicationID:        applicationID,
		WarehouseLocationID:  req.WarehouseLocationID,
		AssignmentSectionID:  req.AssignmentSectionID,
		SectionType:          req.SectionType,
		ResourceID:           req.ResourceID,
		SupportingDocumentID: req.SupportingDocumentID,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Section resubmitted successfully",
		"resubmission": resubmission,
	})
}
