package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// ReconcilePolicy decides what happens to an optimistic status patch when
// the remote update fails.
type ReconcilePolicy string

const (
	// ReconcileRollback restores the prior status unless a newer patch
	// has touched the ticket since.
	ReconcileRollback ReconcilePolicy = "rollback"
	// ReconcileKeep leaves the optimistic status in place until the next
	// successful refetch.
	ReconcileKeep ReconcilePolicy = "keep"
)

// ParseReconcilePolicy converts a config value into a policy.
func ParseReconcilePolicy(raw string) (ReconcilePolicy, error) {
	switch p := ReconcilePolicy(raw); p {
	case ReconcileRollback, ReconcileKeep:
		return p, nil
	case "":
		return ReconcileRollback, nil
	}
	return "", fmt.Errorf("unknown reconcile policy %q", raw)
}

// BoardOptions tunes drop behavior.
type BoardOptions struct {
	Policy ReconcilePolicy
	// PreserveAssignee resends the current assignee with every drop.
	PreserveAssignee bool
}

// BoardDeps groups the collaborators of a board.
type BoardDeps struct {
	Tickets     ports.TicketGateway
	Directory   ports.DirectoryGateway
	Notifier    ports.Notifier
	Broadcaster ports.EventBroadcaster
	Journal     ports.ActivityRepository
	Logger      *slog.Logger
}

// pendingPatch is an optimistic status change waiting for the remote answer.
type pendingPatch struct {
	seq    uint64
	prior  domain.TicketStatus
	target domain.TicketStatus
}

// Board owns one user's board state. The mutex is never held across a
// remote call.
type Board struct {
	userID string
	deps   BoardDeps
	opts   BoardOptions
	logger *slog.Logger

	mu          sync.Mutex
	tickets     []*domain.Ticket
	directory   *domain.Directory
	filter      domain.DateFilter
	inFlight    *string
	pending     map[string]pendingPatch
	seq         uint64
	refreshedAt *time.Time
	lastUsed    time.Time
}

var _ ports.BoardService = (*Board)(nil)

// NewBoard creates an empty board for the given user.
func NewBoard(userID string, deps BoardDeps, opts BoardOptions) *Board {
	if opts.Policy == "" {
		opts.Policy = ReconcileRollback
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		userID:   userID,
		deps:     deps,
		opts:     opts,
		logger:   logger.With("component", "board", "user_id", userID),
		filter:   domain.FilterAll,
		pending:  make(map[string]pendingPatch),
		lastUsed: time.Now(),
	}
}

// LastUsed returns when the board last handled a gesture.
func (b *Board) LastUsed() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUsed
}

func (b *Board) touch() { b.lastUsed = time.Now() }

// Snapshot renders the board as of now, applying the date filter.
func (b *Board) Snapshot(now time.Time) domain.BoardSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked(now)
}

func (b *Board) snapshotLocked(now time.Time) domain.BoardSnapshot {
	snap := domain.BoardSnapshot{
		DateFilter: b.filter,
		Employees:  b.directory.Employees(),
	}
	if snap.Employees == nil {
		snap.Employees = []domain.Employee{}
	}
	if b.inFlight != nil {
		id := *b.inFlight
		snap.InFlightTicketID = &id
	}
	if b.refreshedAt != nil {
		at := *b.refreshedAt
		snap.RefreshedAt = &at
	}

	lanes := make(map[domain.TicketStatus]int, 3)
	for i, col := range domain.Columns() {
		snap.Columns = append(snap.Columns, domain.BoardColumn{Column: col, Cards: []domain.Card{}})
		lanes[col.Status] = i
	}

	for _, t := range b.tickets {
		if !b.filter.Matches(t.CreatedAt, now) {
			continue
		}
		snap.Stats.Count(t.Status)
		i, ok := lanes[t.Status]
		if !ok {
			continue
		}
		card := domain.NewCard(t, b.directory)
		_, card.Pending = b.pending[t.ID]
		snap.Columns[i].Cards = append(snap.Columns[i].Cards, card)
	}
	return snap
}

// SetDateFilter narrows the rendered cards.
func (b *Board) SetDateFilter(filter domain.DateFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if filter == "" {
		filter = domain.FilterAll
	}
	b.filter = filter
	b.touch()
}

// Refresh replaces the ticket list with the server's. Pending patches are
// re-applied on top so an in-flight drop is not undone by the refetch. On
// failure the last good list is kept. A directory that never loaded is
// fetched again first.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	missingDirectory := b.directory == nil
	b.mu.Unlock()
	if missingDirectory && b.deps.Directory != nil {
		_ = b.LoadDirectory(ctx)
	}

	tickets, err := b.deps.Tickets.ListTickets(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to fetch tickets", "error", err)
		b.toast(ctx, domain.ErrorToast(domain.MsgFetchFailed))
		return err
	}

	b.mu.Lock()
	next := make([]*domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t == nil {
			continue
		}
		next = append(next, b.withPendingLocked(t.Clone()))
	}
	b.tickets = next
	now := time.Now().UTC()
	b.refreshedAt = &now
	b.touch()
	snap := b.snapshotLocked(time.Now())
	b.mu.Unlock()

	b.broadcast(domain.EventBoardRefreshed, "", snap)
	return nil
}

// LoadDirectory fetches customers and employees used to resolve cards.
func (b *Board) LoadDirectory(ctx context.Context) error {
	customers, err := b.deps.Directory.ListCustomers(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to fetch customers", "error", err)
		return err
	}
	employees, err := b.deps.Directory.ListEmployees(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to fetch employees", "error", err)
		return err
	}

	b.mu.Lock()
	b.directory = domain.NewDirectory(customers, employees)
	b.touch()
	b.mu.Unlock()
	return nil
}

// DragStart records the ticket as in flight, replacing any earlier drag.
func (b *Board) DragStart(ticketID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.findLocked(ticketID) == nil {
		return apperrors.ErrTicketNotFound
	}
	id := ticketID
	b.inFlight = &id
	b.touch()
	return nil
}

// DragOver reports that a column accepts drops.
func (b *Board) DragOver() bool { return true }

// Drop moves the in-flight ticket to the target column. The in-flight
// reference is consumed by the drop and is cleared on every path. Remote
// failures are logged, toasted and reconciled here; they are reported in
// the result and never returned as errors.
func (b *Board) Drop(ctx context.Context, target domain.TicketStatus) (*domain.MutationResult, error) {
	if !target.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}

	b.mu.Lock()
	b.touch()
	if b.inFlight == nil {
		b.mu.Unlock()
		return &domain.MutationResult{Result: domain.ResultSkipped}, nil
	}
	ticketID := *b.inFlight
	b.inFlight = nil

	ticket := b.findLocked(ticketID)
	if ticket == nil {
		b.mu.Unlock()
		return nil, apperrors.ErrTicketNotFound
	}
	prior := ticket.Status
	if !ticket.CanTransitionTo(target) {
		b.mu.Unlock()
		return &domain.MutationResult{
			Result:   domain.ResultSkipped,
			TicketID: ticketID,
			From:     prior,
			To:       target,
		}, nil
	}

	update := domain.StatusUpdate(target)
	if b.opts.PreserveAssignee {
		update.Assignee = domain.AssigneeFromPointer(ticket.AssignedEmployeeID)
	}

	b.seq++
	seq := b.seq
	b.pending[ticketID] = pendingPatch{seq: seq, prior: prior, target: target}
	b.replaceLocked(update.ApplyTo(ticket))
	b.mu.Unlock()

	updated, err := b.deps.Tickets.UpdateTicket(ctx, ticketID, update)
	detail := fmt.Sprintf("%s -> %s", prior, target)
	if err != nil {
		return b.rejectDrop(ctx, ticketID, seq, prior, target, detail, err), nil
	}

	b.mu.Lock()
	b.settleLocked(ticketID, seq)
	merged := b.mergeLocked(updated)
	card := domain.NewCard(merged, b.directory)
	b.mu.Unlock()

	b.toast(ctx, domain.SuccessToast(domain.MsgStatusUpdated))
	b.broadcast(domain.EventTicketMoved, ticketID, card)
	b.record(ctx, ticketID, domain.ActionMove, nil, detail)
	_ = b.Refresh(ctx)

	return &domain.MutationResult{
		Result:   domain.ResultApplied,
		TicketID: ticketID,
		From:     prior,
		To:       target,
		Message:  domain.MsgStatusUpdated,
		Card:     &card,
	}, nil
}

func (b *Board) rejectDrop(
	ctx context.Context,
	ticketID string,
	seq uint64,
	prior, target domain.TicketStatus,
	detail string,
	cause error,
) *domain.MutationResult {
	b.logger.ErrorContext(ctx, "failed to update ticket status",
		"ticket_id", ticketID,
		"from", prior,
		"to", target,
		"error", cause,
	)

	b.mu.Lock()
	rolledBack := false
	if b.settleLocked(ticketID, seq) && b.opts.Policy == ReconcileRollback {
		if t := b.findLocked(ticketID); t != nil && t.Status == target {
			restored := t.Clone()
			restored.Status = prior
			b.replaceLocked(restored)
			rolledBack = true
		}
	}
	snap := b.snapshotLocked(time.Now())
	b.mu.Unlock()

	b.toast(ctx, domain.ErrorToast(domain.MsgStatusFailed))
	b.broadcast(domain.EventBoardRefreshed, ticketID, snap)
	b.record(ctx, ticketID, domain.ActionMove, cause, detail)

	return &domain.MutationResult{
		Result:     domain.ResultRejected,
		TicketID:   ticketID,
		From:       prior,
		To:         target,
		RolledBack: rolledBack,
		Message:    domain.MsgStatusFailed,
	}
}

// AssignEmployee sets or clears the assignee. A nil or empty employee id
// unassigns. The board refetches after every attempt.
func (b *Board) AssignEmployee(ctx context.Context, ticketID string, employeeID *string) (*domain.MutationResult, error) {
	if ticketID == "" {
		return nil, apperrors.ErrTicketIDRequired
	}
	b.mu.Lock()
	b.touch()
	b.mu.Unlock()

	change := domain.AssigneeFromPointer(employeeID)
	updated, err := b.deps.Tickets.UpdateTicket(ctx, ticketID, domain.TicketUpdate{Assignee: change})
	detail := "unassigned"
	if id := change.EmployeeID(); id != nil {
		detail = "assigned to " + *id
	}

	if err != nil {
		b.logger.ErrorContext(ctx, "failed to update employee assignment",
			"ticket_id", ticketID,
			"error", err,
		)
		b.toast(ctx, domain.ErrorToast(domain.MsgAssignFailed))
		b.record(ctx, ticketID, domain.ActionAssign, err, detail)
		_ = b.Refresh(ctx)
		return &domain.MutationResult{
			Result:   domain.ResultRejected,
			TicketID: ticketID,
			Message:  domain.MsgAssignFailed,
		}, nil
	}

	message := domain.MsgEmployeeAssigned
	if !updated.IsAssigned() {
		message = domain.MsgEmployeeUnassigned
	}

	b.mu.Lock()
	merged := b.mergeLocked(updated)
	card := domain.NewCard(merged, b.directory)
	b.mu.Unlock()

	b.toast(ctx, domain.SuccessToast(message))
	b.broadcast(domain.EventTicketAssigned, ticketID, card)
	b.record(ctx, ticketID, domain.ActionAssign, nil, detail)
	_ = b.Refresh(ctx)

	return &domain.MutationResult{
		Result:   domain.ResultApplied,
		TicketID: ticketID,
		Message:  message,
		Card:     &card,
	}, nil
}

// CreateTicket validates the form values and creates the ticket remotely.
func (b *Board) CreateTicket(ctx context.Context, params domain.TicketParams) (*domain.Ticket, error) {
	input, err := domain.NewTicketInput(params)
	if err != nil {
		return nil, err
	}

	created, err := b.deps.Tickets.CreateTicket(ctx, *input)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to create ticket", "error", err)
		b.toast(ctx, domain.ErrorToast(remoteMessage(err, domain.MsgCreateFailed)))
		b.record(ctx, "", domain.ActionCreate, err, input.Title)
		return nil, err
	}

	b.mu.Lock()
	merged := b.mergeLocked(created)
	card := domain.NewCard(merged, b.directory)
	b.touch()
	b.mu.Unlock()

	b.toast(ctx, domain.SuccessToast(domain.MsgTicketCreated))
	b.broadcast(domain.EventTicketCreated, created.ID, card)
	b.record(ctx, created.ID, domain.ActionCreate, nil, created.Title)
	_ = b.Refresh(ctx)

	return created.Clone(), nil
}

// EditTicket applies a partial update from the edit dialog.
func (b *Board) EditTicket(ctx context.Context, ticketID string, update domain.TicketUpdate) (*domain.Ticket, error) {
	if ticketID == "" {
		b.toast(ctx, domain.ErrorToast(domain.MsgTicketIDRequired))
		return nil, apperrors.ErrTicketIDRequired
	}
	if update.IsEmpty() {
		return nil, apperrors.ErrEmptyUpdate
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	updated, err := b.deps.Tickets.UpdateTicket(ctx, ticketID, update)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to update ticket", "ticket_id", ticketID, "error", err)
		b.toast(ctx, domain.ErrorToast(remoteMessage(err, domain.MsgUpdateFailed)))
		b.record(ctx, ticketID, domain.ActionUpdate, err, "")
		return nil, err
	}

	b.mu.Lock()
	merged := b.mergeLocked(updated)
	card := domain.NewCard(merged, b.directory)
	b.touch()
	b.mu.Unlock()

	b.toast(ctx, domain.SuccessToast(domain.MsgTicketUpdated))
	b.broadcast(domain.EventTicketUpdated, ticketID, card)
	b.record(ctx, ticketID, domain.ActionUpdate, nil, "")
	_ = b.Refresh(ctx)

	return updated.Clone(), nil
}

// DeleteTicket removes the ticket remotely and from the board.
func (b *Board) DeleteTicket(ctx context.Context, ticketID string) error {
	if ticketID == "" {
		b.toast(ctx, domain.ErrorToast(domain.MsgTicketIDRequired))
		return apperrors.ErrTicketIDRequired
	}

	if err := b.deps.Tickets.DeleteTicket(ctx, ticketID); err != nil {
		b.logger.ErrorContext(ctx, "failed to delete ticket", "ticket_id", ticketID, "error", err)
		b.toast(ctx, domain.ErrorToast(domain.MsgDeleteFailed))
		b.record(ctx, ticketID, domain.ActionDelete, err, "")
		return err
	}

	b.mu.Lock()
	b.removeLocked(ticketID)
	delete(b.pending, ticketID)
	if b.inFlight != nil && *b.inFlight == ticketID {
		b.inFlight = nil
	}
	b.touch()
	b.mu.Unlock()

	b.toast(ctx, domain.SuccessToast(domain.MsgTicketDeleted))
	b.broadcast(domain.EventTicketDeleted, ticketID, nil)
	b.record(ctx, ticketID, domain.ActionDelete, nil, "")
	_ = b.Refresh(ctx)
	return nil
}

func (b *Board) findLocked(ticketID string) *domain.Ticket {
	for _, t := range b.tickets {
		if t.ID == ticketID {
			return t
		}
	}
	return nil
}

func (b *Board) replaceLocked(next *domain.Ticket) {
	for i, t := range b.tickets {
		if t.ID == next.ID {
			b.tickets[i] = next
			return
		}
	}
	b.tickets = append(b.tickets, next)
}

func (b *Board) removeLocked(ticketID string) {
	for i, t := range b.tickets {
		if t.ID == ticketID {
			b.tickets = append(b.tickets[:i], b.tickets[i+1:]...)
			return
		}
	}
}

// mergeLocked stores the server's version of a ticket, keeping any status
// patch that is still pending.
func (b *Board) mergeLocked(server *domain.Ticket) *domain.Ticket {
	next := b.withPendingLocked(server.Clone())
	b.replaceLocked(next)
	return next
}

func (b *Board) withPendingLocked(t *domain.Ticket) *domain.Ticket {
	if p, ok := b.pending[t.ID]; ok {
		t.Status = p.target
	}
	return t
}

// settleLocked drops the pending patch if it still belongs to seq.
func (b *Board) settleLocked(ticketID string, seq uint64) bool {
	p, ok := b.pending[ticketID]
	if !ok || p.seq != seq {
		return false
	}
	delete(b.pending, ticketID)
	return true
}

func (b *Board) toast(ctx context.Context, toast domain.Toast) {
	if b.deps.Notifier == nil {
		return
	}
	b.deps.Notifier.Notify(ctx, b.userID, toast)
}

func (b *Board) broadcast(eventType domain.EventType, ticketID string, payload any) {
	if b.deps.Broadcaster == nil {
		return
	}
	if err := b.deps.Broadcaster.Broadcast(domain.NewEvent(b.userID, eventType, ticketID, payload)); err != nil {
		b.logger.Warn("failed to broadcast board event", "event_type", eventType, "error", err)
	}
}

// record appends to the journal. Journal failures never affect the gesture.
func (b *Board) record(ctx context.Context, ticketID string, action domain.ActivityAction, cause error, detail string) {
	if b.deps.Journal == nil {
		return
	}
	activity := domain.NewActivity(b.userID, ticketID, action, cause, detail)
	if err := b.deps.Journal.Append(context.WithoutCancel(ctx), activity); err != nil {
		b.logger.WarnContext(ctx, "failed to record board activity",
			"action", action,
			"ticket_id", ticketID,
			"error", err,
		)
	}
}

// remoteMessage picks the message the remote API returned, or fallback.
func remoteMessage(err error, fallback string) string {
	var remoteErr *apperrors.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.ServerMessage != "" {
		return remoteErr.ServerMessage
	}
	return fallback
}
