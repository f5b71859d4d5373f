package domain

import (
	"strings"
	"time"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// Validation limits for ticket fields.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

// TicketStatus represents the column a ticket sits in.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in-progress"
	StatusClosed     TicketStatus = "closed"
)

// AllStatuses returns the statuses in board column order.
func AllStatuses() []TicketStatus {
	return []TicketStatus{StatusOpen, StatusInProgress, StatusClosed}
}

// IsValid reports whether the status is one of the three board statuses.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Label is the badge text shown on a card, e.g. "in progress".
func (s TicketStatus) Label() string {
	return strings.Replace(string(s), "-", " ", 1)
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	status := TicketStatus(strings.TrimSpace(raw))
	if !status.IsValid() {
		return "", apperrors.ErrInvalidStatus
	}
	return status, nil
}

// TicketPriority represents the urgency of a ticket. Informational only.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// IsValid reports whether the priority is known.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParseTicketPriority converts raw input into a TicketPriority.
func ParseTicketPriority(raw string) (TicketPriority, error) {
	priority := TicketPriority(strings.TrimSpace(raw))
	if !priority.IsValid() {
		return "", apperrors.ErrInvalidPriority
	}
	return priority, nil
}

// Ticket is a support request as returned by the remote API.
type Ticket struct {
	ID                 string
	Title              string
	Description        string
	Status             TicketStatus
	Priority           TicketPriority
	CustomerID         string
	AssignedEmployeeID *string
	Agency             string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// Clone returns a deep copy so board state never aliases gateway results.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	if t.AssignedEmployeeID != nil {
		id := *t.AssignedEmployeeID
		c.AssignedEmployeeID = &id
	}
	if t.UpdatedAt != nil {
		at := *t.UpdatedAt
		c.UpdatedAt = &at
	}
	return &c
}

// CanTransitionTo reports whether a move to the given status is meaningful.
// Every status can move to every other status; closed tickets can be reopened.
func (t *Ticket) CanTransitionTo(status TicketStatus) bool {
	return status.IsValid() && t.Status != status
}

// IsAssigned reports whether an employee is linked to the ticket.
func (t *Ticket) IsAssigned() bool {
	return t.AssignedEmployeeID != nil && *t.AssignedEmployeeID != ""
}

// IsAssignedTo reports whether the given employee is the assignee.
func (t *Ticket) IsAssignedTo(employeeID string) bool {
	return t.IsAssigned() && *t.AssignedEmployeeID == employeeID
}

// TicketParams holds the fields of the create form.
type TicketParams struct {
	Title              string
	Description        string
	Priority           TicketPriority
	Status             TicketStatus
	CustomerID         string
	AssignedEmployeeID *string
}

// NewTicketInput validates create form values and applies the defaults
// (status open, priority medium).
func NewTicketInput(params TicketParams) (*TicketParams, error) {
	errs := apperrors.NewValidationErrors()

	title := strings.TrimSpace(params.Title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > MaxTitleLength {
		errs.Add("title", "Title must be 255 characters or less")
	}

	description := strings.TrimSpace(params.Description)
	if description == "" {
		errs.Add("description", "Description is required")
	} else if len(description) > MaxDescriptionLength {
		errs.Add("description", "Description must be 10000 characters or less")
	}

	if strings.TrimSpace(params.CustomerID) == "" {
		errs.Add("customer", "Customer is required")
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	} else if !priority.IsValid() {
		errs.Add("priority", "Priority must be one of: low, medium, high")
	}

	status := params.Status
	if status == "" {
		status = StatusOpen
	} else if !status.IsValid() {
		errs.Add("status", "Status must be one of: open, in-progress, closed")
	}

	if errs.HasErrors() {
		return nil, errs
	}

	var assignee *string
	if params.AssignedEmployeeID != nil && *params.AssignedEmployeeID != "" {
		id := *params.AssignedEmployeeID
		assignee = &id
	}

	return &TicketParams{
		Title:              title,
		Description:        description,
		Priority:           priority,
		Status:             status,
		CustomerID:         strings.TrimSpace(params.CustomerID),
		AssignedEmployeeID: assignee,
	}, nil
}
