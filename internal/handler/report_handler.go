package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/virtual-classroom-api/internal/service"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
	"github.com/noah-isme/virtual-classroom-api/pkg/response"
)

type reportService interface {
	Render(ctx context.Context, assignmentID string, format service.ReportFormat) (*service.Report, error)
}

// ReportHandler serves downloadable submission reports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Export godoc
// @Summary Export submission report
// @Description Download the assignment's full roster with derived statuses
// @Tags Submissions
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Assignment ID"
// @Param format query string false "csv or pdf (defaults to csv)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /assignments/{id}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := service.ParseReportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}

	report, err := h.service.Render(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
