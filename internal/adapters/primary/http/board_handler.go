package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	mw "github.com/lorrc/ticket-board/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticket-board/internal/adapters/primary/validation"
	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/infrastructure/logging"
)

const maxActivityPerPage = 100

// BoardHandler serves one board per authenticated user.
type BoardHandler struct {
	boards       ports.BoardRegistry
	activity     ports.ActivityService
	errorHandler *ErrorHandler
	logger       *slog.Logger
	now          func() time.Time
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(
	boards ports.BoardRegistry,
	activity ports.ActivityService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *BoardHandler {
	return &BoardHandler{
		boards:       boards,
		activity:     activity,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "board"),
		now:          time.Now,
	}
}

// RegisterRoutes sets up the routing for all board endpoints. The mutation
// middlewares wrap only the routes that write to the remote API.
func (h *BoardHandler) RegisterRoutes(r chi.Router, mutations ...func(http.Handler) http.Handler) {
	r.Get("/", h.HandleSnapshot)
	r.Post("/refresh", h.HandleRefresh)
	r.Post("/drag/start", h.HandleDragStart)
	r.Post("/drag/over", h.HandleDragOver)
	r.Get("/activity", h.HandleListActivity)

	r.Group(func(r chi.Router) {
		r.Use(mutations...)

		r.Post("/drop", h.HandleDrop)
		r.Post("/tickets", h.HandleCreateTicket)
		r.Route("/tickets/{ticketID}", func(r chi.Router) {
			r.Patch("/", h.HandleEditTicket)
			r.Delete("/", h.HandleDeleteTicket)
			r.Patch("/assignee", h.HandleAssignEmployee)
		})
	})
}

// --- Request/Response DTOs ---

// DragStartRequest names the ticket being picked up.
type DragStartRequest struct {
	TicketID string `json:"ticketId"`
}

// Validate validates the drag start request
func (r *DragStartRequest) Validate() error {
	v := validation.NewValidator()
	v.Required("ticketId", r.TicketID)
	return v.Err()
}

// DropRequest names the column the in-flight ticket was dropped on.
type DropRequest struct {
	Status string `json:"status"`
}

// Validate validates the drop request
func (r *DropRequest) Validate() error {
	v := validation.NewValidator()
	v.Required("status", r.Status).
		OneOf("status", r.Status, statusValues())
	return v.Err()
}

// AssignEmployeeRequest carries the selected employee. Null or "" unassigns.
type AssignEmployeeRequest struct {
	EmployeeID *string `json:"employeeId"`
}

// CreateTicketRequest mirrors the create dialog.
type CreateTicketRequest struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Customer         string  `json:"customer"`
	Priority         string  `json:"priority"`
	Status           string  `json:"status"`
	AssignedEmployee *string `json:"assignedEmployee"`
}

// Validate checks enums and lengths; required fields are checked by the
// board.
func (r *CreateTicketRequest) Validate() error {
	v := validation.NewValidator()
	v.MaxLength("title", r.Title, domain.MaxTitleLength).
		MaxLength("description", r.Description, domain.MaxDescriptionLength).
		OneOf("priority", r.Priority, priorityValues()).
		OneOf("status", r.Status, statusValues())
	return v.Err()
}

func (r *CreateTicketRequest) params() domain.TicketParams {
	return domain.TicketParams{
		Title:              r.Title,
		Description:        r.Description,
		CustomerID:         r.Customer,
		Priority:           domain.TicketPriority(r.Priority),
		Status:             domain.TicketStatus(r.Status),
		AssignedEmployeeID: r.AssignedEmployee,
	}
}

// EditTicketRequest mirrors the edit dialog. Absent fields are left alone;
// assignedEmployee distinguishes absent from an explicit null.
type EditTicketRequest struct {
	Title            *string         `json:"title"`
	Description      *string         `json:"description"`
	Customer         *string         `json:"customer"`
	Priority         *string         `json:"priority"`
	Status           *string         `json:"status"`
	AssignedEmployee json.RawMessage `json:"assignedEmployee"`
}

func (r *EditTicketRequest) update() (domain.TicketUpdate, error) {
	update := domain.TicketUpdate{
		Title:       r.Title,
		Description: r.Description,
		CustomerID:  r.Customer,
	}
	if r.Status != nil {
		status := domain.TicketStatus(*r.Status)
		update.Status = &status
	}
	if r.Priority != nil {
		priority := domain.TicketPriority(*r.Priority)
		update.Priority = &priority
	}

	if len(r.AssignedEmployee) > 0 {
		if bytes.Equal(bytes.TrimSpace(r.AssignedEmployee), []byte("null")) {
			update.Assignee = domain.Unassign()
		} else {
			var employeeID string
			if err := json.Unmarshal(r.AssignedEmployee, &employeeID); err != nil {
				v := validation.NewValidator()
				v.Custom("assignedEmployee", false, "Must be an employee id or null")
				return domain.TicketUpdate{}, v.Err()
			}
			update.Assignee = domain.AssigneeFromPointer(&employeeID)
		}
	}

	return update, nil
}

// TicketDTO defines the JSON response for tickets.
type TicketDTO struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Status           string  `json:"status"`
	Priority         string  `json:"priority"`
	Customer         string  `json:"customer"`
	AssignedEmployee *string `json:"assignedEmployee"`
	Agency           string  `json:"agency,omitempty"`
	CreatedAt        *string `json:"createdAt"`
	UpdatedAt        *string `json:"updatedAt"`
}

func toTicketDTO(ticket *domain.Ticket) TicketDTO {
	var createdAt *string
	if !ticket.CreatedAt.IsZero() {
		value := ticket.CreatedAt.Format(time.RFC3339)
		createdAt = &value
	}

	var updatedAt *string
	if ticket.UpdatedAt != nil {
		value := ticket.UpdatedAt.Format(time.RFC3339)
		updatedAt = &value
	}

	return TicketDTO{
		ID:               ticket.ID,
		Title:            ticket.Title,
		Description:      ticket.Description,
		Status:           string(ticket.Status),
		Priority:         string(ticket.Priority),
		Customer:         ticket.CustomerID,
		AssignedEmployee: ticket.AssignedEmployeeID,
		Agency:           ticket.Agency,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}

// MutationResponse pairs the outcome of a gesture with the board after it.
type MutationResponse struct {
	Result *domain.MutationResult `json:"result"`
	Board  domain.BoardSnapshot   `json:"board"`
}

// DragOverResponse tells the client the column accepts the drop.
type DragOverResponse struct {
	Accept bool `json:"accept"`
}

func statusValues() []string {
	values := make([]string, 0, 3)
	for _, s := range domain.AllStatuses() {
		values = append(values, string(s))
	}
	return values
}

func priorityValues() []string {
	return []string{
		string(domain.PriorityLow),
		string(domain.PriorityMedium),
		string(domain.PriorityHigh),
	}
}

// --- Handlers ---

// HandleSnapshot handles GET /board. An optional ?filter= changes the
// board's date filter before rendering; ?tz= sets the zone its day
// boundaries are computed in.
func (h *BoardHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}
	loc, err := h.location(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	if raw := r.URL.Query().Get("filter"); raw != "" {
		filter, err := domain.ParseDateFilter(raw)
		if HandleError(w, r, err, h.errorHandler) {
			return
		}
		board.SetDateFilter(filter)
	}

	WriteJSON(w, http.StatusOK, board.Snapshot(h.now().In(loc)))
}

// HandleRefresh handles POST /board/refresh
func (h *BoardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}

	loc, err := h.location(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	if err := board.Refresh(r.Context()); HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, board.Snapshot(h.now().In(loc)))
}

// HandleDragStart handles POST /board/drag/start
func (h *BoardHandler) HandleDragStart(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[DragStartRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if err := req.Validate(); HandleError(w, r, err, h.errorHandler) {
		return
	}

	if err := board.DragStart(req.TicketID); HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteNoContent(w)
}

// HandleDragOver handles POST /board/drag/over
func (h *BoardHandler) HandleDragOver(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, DragOverResponse{Accept: board.DragOver()})
}

// HandleDrop handles POST /board/drop. A rejected drop is still a 200: the
// outcome is in the result and the user got a toast.
func (h *BoardHandler) HandleDrop(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}

	loc, err := h.location(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	req, err := validation.DecodeAndValidate[DropRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if err := req.Validate(); HandleError(w, r, err, h.errorHandler) {
		return
	}

	result, err := board.Drop(r.Context(), domain.TicketStatus(req.Status))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "ticket dropped",
		"ticket_id", result.TicketID,
		"to", req.Status,
		"result", result.Result,
	)

	WriteJSON(w, http.StatusOK, MutationResponse{
		Result: result,
		Board:  board.Snapshot(h.now().In(loc)),
	})
}

// HandleAssignEmployee handles PATCH /board/tickets/{ticketID}/assignee
func (h *BoardHandler) HandleAssignEmployee(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}
	ticketID, ctx := h.ticketID(r)

	loc, err := h.location(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	req, err := validation.DecodeAndValidate[AssignEmployeeRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	result, err := board.AssignEmployee(ctx, ticketID, req.EmployeeID)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, MutationResponse{
		Result: result,
		Board:  board.Snapshot(h.now().In(loc)),
	})
}

// HandleCreateTicket handles POST /board/tickets
func (h *BoardHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateTicketRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if err := req.Validate(); HandleError(w, r, err, h.errorHandler) {
		return
	}

	ticket, err := board.CreateTicket(r.Context(), req.params())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "ticket created", "ticket_id", ticket.ID)

	WriteCreated(w, toTicketDTO(ticket))
}

// HandleEditTicket handles PATCH /board/tickets/{ticketID}
func (h *BoardHandler) HandleEditTicket(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}
	ticketID, ctx := h.ticketID(r)

	req, err := validation.DecodeAndValidate[EditTicketRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	update, err := req.update()
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	ticket, err := board.EditTicket(ctx, ticketID, update)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleDeleteTicket handles DELETE /board/tickets/{ticketID}
func (h *BoardHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}

	ticketID, ctx := h.ticketID(r)
	if err := board.DeleteTicket(ctx, ticketID); HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteNoContent(w)
}

// HandleListActivity handles GET /board/activity
func (h *BoardHandler) HandleListActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	page := validation.ParsePage(r, maxActivityPerPage)
	params := ports.ListActivityParams{
		UserID:   userID,
		TicketID: validation.OptionalQuery(r, "ticketId"),
		Limit:    page.Limit + 1,
		Offset:   page.Offset,
	}

	activities, err := h.activity.ListActivity(r.Context(), params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WritePaginatedSimple(w, activities, page.Limit, page.Offset)
}

// --- Helper methods ---

func (h *BoardHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok || claims.UserID() == "" {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("Not authorized"))
		return "", false
	}
	return claims.UserID(), true
}

// board resolves the caller's board, loading it on first use.
func (h *BoardHandler) board(w http.ResponseWriter, r *http.Request) (ports.BoardService, bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return nil, false
	}

	board, err := h.boards.Board(r.Context(), userID)
	if HandleError(w, r, err, h.errorHandler) {
		return nil, false
	}
	return board, true
}

// location reads ?tz=, an IANA zone name such as "Europe/Berlin". The
// date filter's day boundaries follow it; without it the server's zone
// applies.
func (h *BoardHandler) location(r *http.Request) (*time.Location, error) {
	name := r.URL.Query().Get("tz")
	if name == "" {
		return h.now().Location(), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", apperrors.ErrInvalidTimeZone, name)
	}
	return loc, nil
}

// ticketID reads the route's ticket id and returns a context tagged with
// it for logging. An empty id is left to the board to reject.
func (h *BoardHandler) ticketID(r *http.Request) (string, context.Context) {
	ticketID := chi.URLParam(r, "ticketID")
	return ticketID, logging.WithTicketID(r.Context(), ticketID)
}
