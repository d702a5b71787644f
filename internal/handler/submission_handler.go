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

type submissionService interface {
	Submit(ctx context.Context, assignmentID, studentID string, req service.SubmitRequest) (*models.Submission, error)
}

// SubmissionHandler exposes the student submission endpoint.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(svc submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: svc}
}

// Submit godoc
// @Summary Submit an assignment
// @Description Record the caller's remark on their submission row exactly once
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.SubmitRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), c.Param("id"), claims.Username, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}
