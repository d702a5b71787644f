package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	"github.com/noah-isme/virtual-classroom-api/internal/service"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
)

type reportServiceMock struct {
	resp       *service.Report
	err        error
	lastFormat service.ReportFormat
}

func (m *reportServiceMock) Render(ctx context.Context, assignmentID string, format service.ReportFormat) (*service.Report, error) {
	m.lastFormat = format
	return m.resp, m.err
}

func TestReportHandlerExportCSV(t *testing.T) {
	mockSvc := &reportServiceMock{resp: &service.Report{
		Content:     []byte("student_id,status,remark,submitted_at\n"),
		ContentType: "text/csv",
		Filename:    "submissions-a1.csv",
	}}
	handler := NewReportHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/assignments/a1/export", nil, &models.JWTClaims{Username: "tutor1", Role: models.RoleTutor})
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ReportFormatCSV, mockSvc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "submissions-a1.csv")
}

func TestReportHandlerExportInvalidFormat(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{})

	c, w := testContext(t, http.MethodGet, "/assignments/a1/export?format=xlsx", nil, &models.JWTClaims{Username: "tutor1", Role: models.RoleTutor})
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.Export(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerExportUnknownAssignment(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{err: appErrors.ErrInvalidReference})

	c, w := testContext(t, http.MethodGet, "/assignments/ghost/export", nil, &models.JWTClaims{Username: "tutor1", Role: models.RoleTutor})
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Export(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
