package ports

import (
	"context"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
)

// BoardService is one user's ticket board.
type BoardService interface {
	Snapshot(now time.Time) domain.BoardSnapshot
	Refresh(ctx context.Context) error
	LoadDirectory(ctx context.Context) error
	SetDateFilter(filter domain.DateFilter)

	DragStart(ticketID string) error
	DragOver() bool
	Drop(ctx context.Context, target domain.TicketStatus) (*domain.MutationResult, error)
	AssignEmployee(ctx context.Context, ticketID string, employeeID *string) (*domain.MutationResult, error)

	CreateTicket(ctx context.Context, params domain.TicketParams) (*domain.Ticket, error)
	EditTicket(ctx context.Context, ticketID string, update domain.TicketUpdate) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, ticketID string) error
}

// BoardRegistry hands out the board owned by each authenticated user.
type BoardRegistry interface {
	// Board returns the user's board, loading it on first use.
	Board(ctx context.Context, userID string) (BoardService, error)
	Len() int
	Shutdown()
}

// ActivityService exposes the mutation journal.
type ActivityService interface {
	ListActivity(ctx context.Context, params ListActivityParams) ([]*domain.Activity, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Notifier delivers toasts to a user.
type Notifier interface {
	Notify(ctx context.Context, userID string, toast domain.Toast)
}

// EventBroadcaster pushes board events to a user's live connections.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
