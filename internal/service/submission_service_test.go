package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
)

func seedSubmission(t *testing.T, now time.Time) (*fakeAssignmentStore, *fakeSubmissionStore) {
	t.Helper()
	assignments := newFakeAssignmentStore()
	submissions := newFakeSubmissionStore()
	ctx := context.Background()

	assignment := models.Assignment{ID: "a1", OwnerID: "tutor-1", Description: "essay", Deadline: now.Add(24 * time.Hour), PublishedAt: now.Add(-time.Hour)}
	require.NoError(t, assignments.Create(ctx, &assignment))
	require.NoError(t, submissions.Create(ctx, &models.Submission{AssignmentID: "a1", StudentID: "s1"}))
	require.NoError(t, submissions.Create(ctx, &models.Submission{AssignmentID: "a1", StudentID: "s2"}))

	return assignments, submissions
}

func newTestSubmissionService(assignments *fakeAssignmentStore, submissions *fakeSubmissionStore, now time.Time) *SubmissionService {
	return NewSubmissionService(submissions, assignments, nil, zap.NewNop(), fixedClock(now))
}

func TestSubmissionServiceSubmit(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assignments, submissions := seedSubmission(t, now)
	svc := newTestSubmissionService(assignments, submissions, now)

	submitted, err := svc.Submit(context.Background(), "a1", "s1", SubmitRequest{Remark: "my answer"})
	require.NoError(t, err)
	assert.Equal(t, "my answer", submitted.Remark)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, now, *submitted.SubmittedAt)

	stored := submissions.rows[submissionKey("a1", "s1")]
	assert.True(t, stored.Submitted())
	assert.Equal(t, "my answer", stored.Remark)
}

func TestSubmissionServiceSubmitTwiceConflicts(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assignments, submissions := seedSubmission(t, now)
	svc := newTestSubmissionService(assignments, submissions, now)

	_, err := svc.Submit(context.Background(), "a1", "s1", SubmitRequest{Remark: "first"})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "a1", "s1", SubmitRequest{Remark: "second"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)

	// The original remark and instant survive the rejected retry.
	stored := submissions.rows[submissionKey("a1", "s1")]
	assert.Equal(t, "first", stored.Remark)
	assert.Equal(t, now, *stored.SubmittedAt)
}

func TestSubmissionServiceSubmitOffRoster(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assignments, submissions := seedSubmission(t, now)
	svc := newTestSubmissionService(assignments, submissions, now)

	_, err := svc.Submit(context.Background(), "a1", "ghost", SubmitRequest{Remark: "late join"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestSubmissionServiceSubmitBlankRemark(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assignments, submissions := seedSubmission(t, now)
	svc := newTestSubmissionService(assignments, submissions, now)

	for _, remark := range []string{"", "   "} {
		_, err := svc.Submit(context.Background(), "a1", "s1", SubmitRequest{Remark: remark})
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
	assert.False(t, submissions.rows[submissionKey("a1", "s1")].Submitted())
}

func TestSubmissionServiceListForTutorOnlySubmitted(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assignments, submissions := seedSubmission(t, now)
	svc := newTestSubmissionService(assignments, submissions, now)

	_, err := svc.Submit(context.Background(), "a1", "s2", SubmitRequest{Remark: "done"})
	require.NoError(t, err)

	rows, err := svc.ListForTutor(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s2", rows[0].StudentID)
}

func TestSubmissionServiceListForTutorUnknownAssignment(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assignments, submissions := seedSubmission(t, now)
	svc := newTestSubmissionService(assignments, submissions, now)

	_, err := svc.ListForTutor(context.Background(), "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErr.Code)
}

func TestSubmissionServiceGetForStudent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assignments, submissions := seedSubmission(t, now)
	svc := newTestSubmissionService(assignments, submissions, now)

	row, err := svc.GetForStudent(context.Background(), "a1", "s1")
	require.NoError(t, err)
	assert.False(t, row.Submitted())

	_, err = svc.GetForStudent(context.Background(), "a1", "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErr.Code)
}
