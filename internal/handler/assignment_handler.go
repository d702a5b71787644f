package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	"github.com/noah-isme/virtual-classroom-api/internal/service"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
	"github.com/noah-isme/virtual-classroom-api/pkg/response"
)

type assignmentLifecycleService interface {
	Create(ctx context.Context, ownerID string, req service.CreateAssignmentRequest) (*models.Assignment, error)
	Update(ctx context.Context, id string, req service.UpdateAssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id string) (*models.Assignment, error)
}

type assignmentListingService interface {
	ListForTutor(ctx context.Context, tutorID, rawPublished string) ([]models.Assignment, error)
	ListForStudent(ctx context.Context, studentID, rawPublished, rawSubmission string) ([]models.Assignment, error)
}

type submissionViewService interface {
	ListForTutor(ctx context.Context, assignmentID string) ([]models.Submission, error)
	GetForStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
}

// AssignmentHandler exposes the assignment lifecycle and listing endpoints.
// Listing and detail views dispatch on the caller's role.
type AssignmentHandler struct {
	assignments assignmentLifecycleService
	listings    assignmentListingService
	submissions submissionViewService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments assignmentLifecycleService, listings assignmentListingService, submissions submissionViewService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, listings: listings, submissions: submissions}
}

// Create godoc
// @Summary Create assignment
// @Description Create an assignment and fan out one submission row per student
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.assignments.Create(c.Request.Context(), claims.Username, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment
// @Description Merge supplied fields and reconcile the roster when provided
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.assignments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// Delete godoc
// @Summary Delete assignment
// @Description Delete an assignment and its submission rows
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	assignment, err := h.assignments.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// List godoc
// @Summary List assignments
// @Description Tutors see their own assignments; students see assignments they
// @Description hold a submission row for. Statuses are derived at query time.
// @Tags Assignments
// @Produce json
// @Param published_status query string false "ALL, SCHEDULED or ONGOING"
// @Param submission_status query string false "ALL, PENDING, OVERDUE or SUBMITTED (students only)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		assignments []models.Assignment
		err         error
	)
	switch claims.Role {
	case models.RoleTutor:
		assignments, err = h.listings.ListForTutor(c.Request.Context(), claims.Username, c.Query("published_status"))
	case models.RoleStudent:
		assignments, err = h.listings.ListForStudent(c.Request.Context(), claims.Username, c.Query("published_status"), c.Query("submission_status"))
	default:
		err = appErrors.ErrForbidden
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments)
}

// Get godoc
// @Summary Get assignment detail
// @Description Tutors get the submitted rows of the assignment; students get
// @Description their own row, rendered empty while unsubmitted.
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignmentID := c.Param("id")

	switch claims.Role {
	case models.RoleTutor:
		submissions, err := h.submissions.ListForTutor(c.Request.Context(), assignmentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, submissions)
	case models.RoleStudent:
		submission, err := h.submissions.GetForStudent(c.Request.Context(), assignmentID, claims.Username)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !submission.Submitted() {
			response.JSON(c, http.StatusOK, gin.H{})
			return
		}
		response.JSON(c, http.StatusOK, submission)
	default:
		response.Error(c, appErrors.ErrForbidden)
	}
}
