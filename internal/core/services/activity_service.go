package services

import (
	"context"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityService handles journal queries.
type ActivityService struct {
	activityRepo ports.ActivityRepository
}

var _ ports.ActivityService = (*ActivityService)(nil)

// NewActivityService creates a new activity service.
func NewActivityService(activityRepo ports.ActivityRepository) ports.ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// ListActivity returns the caller's journal, newest first.
func (s *ActivityService) ListActivity(ctx context.Context, params ports.ListActivityParams) ([]*domain.Activity, error) {
	if params.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if params.Limit <= 0 {
		params.Limit = defaultActivityLimit
	}
	if params.Limit > maxActivityLimit {
		params.Limit = maxActivityLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	return s.activityRepo.ListByUser(ctx, params)
}

// Prune drops journal entries older than the retention window.
func (s *ActivityService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.activityRepo.Prune(ctx, time.Now().UTC().Add(-retention))
}
