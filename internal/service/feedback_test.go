package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
	"github.com/crimetracker/crimetracker-api/internal/mocks"
)

func newFeedbackService(t *testing.T) (*mocks.MockFeedbackRepository, *mocks.MockAuditLogRepository, *FeedbackService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fb := mocks.NewMockFeedbackRepository(ctrl)
	audit := mocks.NewMockAuditLogRepository(ctrl)
	return fb, audit, NewFeedbackService(FeedbackServiceOptions{Feedback: fb, Audit: audit})
}

func TestFeedbackService_Submit(t *testing.T) {
	fb, _, svc := newFeedbackService(t)
	ctx := context.Background()

	fb.EXPECT().Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateFeedbackRequest) (*model.Feedback, error) {
			assert.Equal(t, "Great app", req.Message)
			assert.Nil(t, req.Name)
			return &model.Feedback{ID: "f1", Message: req.Message}, nil
		})

	blank := " "
	f, err := svc.Submit(ctx, &model.CreateFeedbackRequest{Name: &blank, Message: "  Great app "})
	require.NoError(t, err)
	assert.Equal(t, "f1", f.ID)
}

func TestFeedbackService_Submit_BlankMessage(t *testing.T) {
	_, _, svc := newFeedbackService(t)

	_, err := svc.Submit(context.Background(), &model.CreateFeedbackRequest{Message: "   "})
	requireCode(t, err, apperrors.ErrCodeValidation)
	assert.Equal(t, "Please enter your feedback.", apperrors.Message(err, ""))
	assert.Equal(t, "message", apperrors.GetField(err))
}

func TestFeedbackService_Lists(t *testing.T) {
	fb, audit, svc := newFeedbackService(t)
	ctx := context.Background()

	fb.EXPECT().List(ctx, defaultAdminListLimit, 0).Return([]*model.Feedback{{ID: "f1"}}, nil)
	audit.EXPECT().List(ctx, 20, 40).Return([]*model.AuditLog{{ID: "a1"}}, nil)

	items, err := svc.ListFeedback(ctx, 0, -5)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	logs, err := svc.ListAuditLogs(ctx, 20, 40)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
