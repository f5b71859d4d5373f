package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

const (
	insertActivitySQL = `
INSERT INTO board_activity (id, user_id, ticket_id, action, outcome, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listActivitySQL = `
SELECT id, user_id, ticket_id, action, outcome, detail, created_at
FROM board_activity
WHERE user_id = $1
  AND ($2::text IS NULL OR ticket_id = $2)
ORDER BY created_at DESC, id
LIMIT $3 OFFSET $4`

	pruneActivitySQL = `DELETE FROM board_activity WHERE created_at < $1`
)

// ActivityRepository persists the board mutation journal.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

var (
	_ ports.ActivityRepository = (*ActivityRepository)(nil)
	_ ports.HealthChecker      = (*ActivityRepository)(nil)
)

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Append stores one journal entry.
func (r *ActivityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	_, err := r.pool.Exec(ctx, insertActivitySQL,
		activity.ID,
		activity.UserID,
		nullText(activity.TicketID),
		string(activity.Action),
		string(activity.Outcome),
		nullText(activity.Detail),
		activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListByUser returns a page of the user's journal, newest first.
func (r *ActivityRepository) ListByUser(ctx context.Context, params ports.ListActivityParams) ([]*domain.Activity, error) {
	rows, err := r.pool.Query(ctx, listActivitySQL,
		params.UserID,
		optionalText(params.TicketID),
		params.Limit,
		params.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	activities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Activity, error) {
		var (
			a        domain.Activity
			ticketID pgtype.Text
			action   string
			outcome  string
			detail   pgtype.Text
		)
		if err := row.Scan(&a.ID, &a.UserID, &ticketID, &action, &outcome, &detail, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.TicketID = textValue(ticketID)
		a.Detail = textValue(detail)
		a.Action = domain.ActivityAction(action)
		a.Outcome = domain.ActivityOutcome(outcome)
		a.CreatedAt = a.CreatedAt.UTC()
		return &a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	return activities, nil
}

// Prune deletes entries created before the cutoff and reports how many went.
func (r *ActivityRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, pruneActivitySQL, before)
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks the database connection.
func (r *ActivityRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
