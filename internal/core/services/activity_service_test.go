package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/mocks"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_ListActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("applies default limit", func(t *testing.T) {
		repo := mocks.NewMockActivityRepository()
		svc := services.NewActivityService(repo)

		expected := []*domain.Activity{domain.NewActivity("u1", "t1", domain.ActionMove, nil, "")}
		repo.On("ListByUser", ctx, ports.ListActivityParams{UserID: "u1", Limit: 50}).Return(expected, nil).Once()

		got, err := svc.ListActivity(ctx, ports.ListActivityParams{UserID: "u1"})

		require.NoError(t, err)
		assert.Equal(t, expected, got)
		repo.AssertExpectations(t)
	})

	t.Run("caps limit", func(t *testing.T) {
		repo := mocks.NewMockActivityRepository()
		svc := services.NewActivityService(repo)

		repo.On("ListByUser", ctx, ports.ListActivityParams{UserID: "u1", Limit: 200}).Return([]*domain.Activity{}, nil).Once()

		_, err := svc.ListActivity(ctx, ports.ListActivityParams{UserID: "u1", Limit: 5000, Offset: -3})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("requires user", func(t *testing.T) {
		svc := services.NewActivityService(mocks.NewMockActivityRepository())

		_, err := svc.ListActivity(ctx, ports.ListActivityParams{})

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestActivityService_Prune(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes entries before the cutoff", func(t *testing.T) {
		repo := mocks.NewMockActivityRepository()
		svc := services.NewActivityService(repo)

		before := time.Now().UTC().Add(-24 * time.Hour)
		repo.On("Prune", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
			return cutoff.Sub(before).Abs() < time.Minute
		})).Return(int64(3), nil).Once()

		n, err := svc.Prune(ctx, 24*time.Hour)

		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		repo.AssertExpectations(t)
	})

	t.Run("zero retention keeps everything", func(t *testing.T) {
		repo := mocks.NewMockActivityRepository()
		svc := services.NewActivityService(repo)

		n, err := svc.Prune(ctx, 0)

		require.NoError(t, err)
		assert.Zero(t, n)
		repo.AssertNotCalled(t, "Prune", mock.Anything, mock.Anything)
	})
}
