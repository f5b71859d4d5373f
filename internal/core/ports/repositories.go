package ports

import (
	"context"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
)

// TicketGateway is the remote ticket API. Failures are returned as
// *errors.RemoteError.
type TicketGateway interface {
	ListTickets(ctx context.Context) ([]*domain.Ticket, error)
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, params domain.TicketParams) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, update domain.TicketUpdate) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}

// DirectoryGateway resolves customer and employee references.
type DirectoryGateway interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
}

// ActivityRepository is the append-only journal of board mutations.
type ActivityRepository interface {
	Append(ctx context.Context, activity *domain.Activity) error
	ListByUser(ctx context.Context, params ListActivityParams) ([]*domain.Activity, error)
	// Prune deletes entries created before the cutoff.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// ListActivityParams pages through one user's journal, newest first.
type ListActivityParams struct {
	UserID   string
	TicketID *string
	Limit    int
	Offset   int
}

// HealthChecker is implemented by dependencies the readiness probe pings.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
