package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestUser returns a user id unique to the test so cases don't see each
// other's rows.
func newTestUser(t *testing.T) string {
	t.Helper()
	return "user-" + t.Name() + "-" + time.Now().Format("150405.000000000")
}

func seedActivity(t *testing.T, repo *ActivityRepository, userID, ticketID string, action domain.ActivityAction, at time.Time) *domain.Activity {
	t.Helper()
	a := domain.NewActivity(userID, ticketID, action, nil, "")
	a.CreatedAt = at
	require.NoError(t, repo.Append(context.Background(), a))
	return a
}

func TestActivityRepository_AppendAndList(t *testing.T) {
	requireDatabase(t)
	ctx := context.Background()
	repo := NewActivityRepository(testPool)
	userID := newTestUser(t)
	base := time.Now().UTC().Truncate(time.Millisecond)

	first := seedActivity(t, repo, userID, "t1", domain.ActionMove, base.Add(-2*time.Minute))
	failed := domain.NewActivity(userID, "t2", domain.ActionAssign, errors.New("boom"), "e1")
	failed.CreatedAt = base.Add(-time.Minute)
	require.NoError(t, repo.Append(ctx, failed))
	last := seedActivity(t, repo, userID, "t1", domain.ActionUpdate, base)
	seedActivity(t, repo, newTestUser(t)+"-other", "t1", domain.ActionDelete, base)

	got, err := repo.ListByUser(ctx, ports.ListActivityParams{UserID: userID, Limit: 10})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, last.ID, got[0].ID)
	assert.Equal(t, failed.ID, got[1].ID)
	assert.Equal(t, first.ID, got[2].ID)

	assert.Equal(t, domain.OutcomeFailed, got[1].Outcome)
	assert.Equal(t, "e1: boom", got[1].Detail)
	assert.Equal(t, domain.ActionAssign, got[1].Action)
	assert.WithinDuration(t, failed.CreatedAt, got[1].CreatedAt, time.Millisecond)
}

func TestActivityRepository_FailedCreateHasNoTicket(t *testing.T) {
	requireDatabase(t)
	ctx := context.Background()
	repo := NewActivityRepository(testPool)
	userID := newTestUser(t)

	require.NoError(t, repo.Append(ctx, domain.NewActivity(userID, "", domain.ActionCreate, errors.New("timeout"), "")))

	got, err := repo.ListByUser(ctx, ports.ListActivityParams{UserID: userID, Limit: 10})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].TicketID)
	assert.Equal(t, domain.OutcomeFailed, got[0].Outcome)

	var nullTicket bool
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT ticket_id IS NULL FROM board_activity WHERE id = $1`, got[0].ID).Scan(&nullTicket))
	assert.True(t, nullTicket)
}

func TestActivityRepository_ListByUserFilters(t *testing.T) {
	requireDatabase(t)
	ctx := context.Background()
	repo := NewActivityRepository(testPool)
	userID := newTestUser(t)
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		seedActivity(t, repo, userID, "t1", domain.ActionMove, base.Add(time.Duration(i)*time.Second))
	}
	seedActivity(t, repo, userID, "t2", domain.ActionMove, base.Add(10*time.Second))

	t.Run("ticket filter", func(t *testing.T) {
		ticketID := "t2"
		got, err := repo.ListByUser(ctx, ports.ListActivityParams{UserID: userID, TicketID: &ticketID, Limit: 10})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "t2", got[0].TicketID)
	})

	t.Run("pagination", func(t *testing.T) {
		page1, err := repo.ListByUser(ctx, ports.ListActivityParams{UserID: userID, Limit: 4})
		require.NoError(t, err)
		page2, err := repo.ListByUser(ctx, ports.ListActivityParams{UserID: userID, Limit: 4, Offset: 4})
		require.NoError(t, err)

		assert.Len(t, page1, 4)
		assert.Len(t, page2, 2)
		assert.NotEqual(t, page1[3].ID, page2[0].ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		got, err := repo.ListByUser(ctx, ports.ListActivityParams{UserID: "nobody", Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestActivityRepository_Prune(t *testing.T) {
	requireDatabase(t)
	ctx := context.Background()
	repo := NewActivityRepository(testPool)
	userID := newTestUser(t)

	old := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	seedActivity(t, repo, userID, "t1", domain.ActionMove, old)
	kept := seedActivity(t, repo, userID, "t1", domain.ActionMove, time.Now().UTC())

	n, err := repo.Prune(ctx, old.Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	got, err := repo.ListByUser(ctx, ports.ListActivityParams{UserID: userID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, kept.ID, got[0].ID)
}

func TestActivityRepository_Ping(t *testing.T) {
	requireDatabase(t)
	assert.NoError(t, NewActivityRepository(testPool).Ping(context.Background()))
}
