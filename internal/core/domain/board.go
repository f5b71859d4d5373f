package domain

import (
	"time"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// Card placeholders and formats.
const (
	UnassignedLabel     = "Unassigned"
	LoadingCustomerText = "Loading customer..."
	NoDateText          = "No date"
	CardDateLayout      = "Jan 2, 2006 at 3:04 PM"
)

// Column is one lane of the board.
type Column struct {
	Status TicketStatus `json:"status"`
	Title  string       `json:"title"`
}

// Columns returns the three board lanes in display order.
func Columns() []Column {
	return []Column{
		{Status: StatusOpen, Title: "To Do"},
		{Status: StatusInProgress, Title: "In Progress"},
		{Status: StatusClosed, Title: "Completed"},
	}
}

// DateFilter narrows the board to tickets created in a window.
type DateFilter string

const (
	FilterAll        DateFilter = "all"
	FilterToday      DateFilter = "today"
	FilterYesterday  DateFilter = "yesterday"
	FilterLast7Days  DateFilter = "last7days"
	FilterLast30Days DateFilter = "last30days"
)

// ParseDateFilter converts raw input into a DateFilter. Empty means all.
func ParseDateFilter(raw string) (DateFilter, error) {
	switch f := DateFilter(raw); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterToday, FilterYesterday, FilterLast7Days, FilterLast30Days:
		return f, nil
	}
	return "", apperrors.ErrInvalidDateFilter
}

// Matches reports whether a ticket created at createdAt passes the filter,
// evaluated in now's location. Bounds are exclusive.
func (f DateFilter) Matches(createdAt, now time.Time) bool {
	if f == FilterAll || f == "" {
		return true
	}
	if createdAt.IsZero() {
		return false
	}
	createdAt = createdAt.In(now.Location())
	today := startOfDay(now)

	switch f {
	case FilterToday:
		endOfDay := today.AddDate(0, 0, 1).Add(-time.Millisecond)
		return createdAt.After(today) && createdAt.Before(endOfDay)
	case FilterYesterday:
		return createdAt.After(today.AddDate(0, 0, -1)) && createdAt.Before(today)
	case FilterLast7Days:
		return createdAt.After(today.AddDate(0, 0, -7))
	case FilterLast30Days:
		return createdAt.After(today.AddDate(0, 0, -30))
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Card is the rendered form of a ticket on the board.
type Card struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	Badge       string         `json:"badge"`
	CustomerID  string         `json:"customerId"`
	Customer    string         `json:"customer"`
	AssigneeID  *string        `json:"assigneeId"`
	Assignee    string         `json:"assignee"`
	CreatedAt   string         `json:"createdAt"`
	Pending     bool           `json:"pending"`
}

// NewCard resolves a ticket against the directory.
func NewCard(t *Ticket, dir *Directory) Card {
	card := Card{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Badge:       t.Status.Label(),
		CustomerID:  t.CustomerID,
		Customer:    LoadingCustomerText,
		Assignee:    UnassignedLabel,
		CreatedAt:   FormatCardDate(t.CreatedAt),
	}
	if c, ok := dir.Customer(t.CustomerID); ok {
		card.Customer = c.DisplayName()
	}
	if t.IsAssigned() {
		id := *t.AssignedEmployeeID
		if e, ok := dir.Employee(id); ok {
			card.AssigneeID = &id
			card.Assignee = e.Name
		}
	}
	return card
}

// FormatCardDate renders a creation time for a card.
func FormatCardDate(t time.Time) string {
	if t.IsZero() {
		return NoDateText
	}
	return t.Format(CardDateLayout)
}

// BoardColumn is a lane with its cards.
type BoardColumn struct {
	Column
	Cards []Card `json:"cards"`
}

// BoardStats are the counters above the board.
type BoardStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

// Count adds a ticket to the counters.
func (s *BoardStats) Count(status TicketStatus) {
	s.Total++
	switch status {
	case StatusOpen:
		s.Open++
	case StatusInProgress:
		s.InProgress++
	case StatusClosed:
		s.Closed++
	}
}

// BoardSnapshot is the full render state of one user's board.
type BoardSnapshot struct {
	Stats            BoardStats    `json:"stats"`
	Columns          []BoardColumn `json:"columns"`
	DateFilter       DateFilter    `json:"dateFilter"`
	InFlightTicketID *string       `json:"inFlightTicketId"`
	Employees        []Employee    `json:"employees"`
	RefreshedAt      *time.Time    `json:"refreshedAt"`
}

// Column returns the lane for the given status.
func (b BoardSnapshot) Column(status TicketStatus) (BoardColumn, bool) {
	for _, c := range b.Columns {
		if c.Status == status {
			return c, true
		}
	}
	return BoardColumn{}, false
}

// FindCard locates a card and the lane holding it.
func (b BoardSnapshot) FindCard(ticketID string) (Card, TicketStatus, bool) {
	for _, c := range b.Columns {
		for _, card := range c.Cards {
			if card.ID == ticketID {
				return card, c.Status, true
			}
		}
	}
	return Card{}, "", false
}
