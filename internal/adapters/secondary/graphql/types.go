package graphql

import (
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
)

type ticketDTO struct {
	ID               string  `json:"id"`
	Customer         string  `json:"customer"`
	AssignedEmployee *string `json:"assignedEmployee"`
	Status           string  `json:"status"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Priority         string  `json:"priority"`
	Agency           string  `json:"agency"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        *string `json:"updatedAt"`
}

type customerDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
}

type employeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ticketsResponse struct {
	Tickets []ticketDTO `json:"tickets"`
}

type ticketResponse struct {
	Ticket *ticketDTO `json:"ticket"`
}

type createTicketResponse struct {
	CreateTicket *ticketDTO `json:"createTicket"`
}

type updateTicketResponse struct {
	UpdateTicket *ticketDTO `json:"updateTicket"`
}

type deleteTicketResponse struct {
	DeleteTicket bool `json:"deleteTicket"`
}

type customersResponse struct {
	Customers []customerDTO `json:"customers"`
}

type employeesResponse struct {
	StaffMembers []employeeDTO `json:"staffMembers"`
}

// The API serializes datetimes with or without an offset.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTime returns the zero time for empty or unknown formats; cards then
// show "No date".
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d ticketDTO) toDomain() *domain.Ticket {
	t := &domain.Ticket{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TicketStatus(d.Status),
		Priority:    domain.TicketPriority(d.Priority),
		CustomerID:  d.Customer,
		Agency:      d.Agency,
		CreatedAt:   parseTime(d.CreatedAt),
	}
	if d.AssignedEmployee != nil && *d.AssignedEmployee != "" {
		id := *d.AssignedEmployee
		t.AssignedEmployeeID = &id
	}
	if d.UpdatedAt != nil {
		if at := parseTime(*d.UpdatedAt); !at.IsZero() {
			t.UpdatedAt = &at
		}
	}
	return t
}

// createInput builds the TicketInput variable.
func createInput(p domain.TicketParams) map[string]any {
	input := map[string]any{
		"customer":    p.CustomerID,
		"title":       p.Title,
		"description": p.Description,
		"status":      string(p.Status),
		"priority":    string(p.Priority),
	}
	if p.AssignedEmployeeID != nil {
		input["assignedEmployee"] = *p.AssignedEmployeeID
	}
	return input
}

// updateInput builds the TicketUpdateInput variable. Only present fields are
// sent; unassigning sends an explicit null.
func updateInput(u domain.TicketUpdate) map[string]any {
	input := make(map[string]any)
	if u.Title != nil {
		input["title"] = *u.Title
	}
	if u.Description != nil {
		input["description"] = *u.Description
	}
	if u.Status != nil {
		input["status"] = string(*u.Status)
	}
	if u.Priority != nil {
		input["priority"] = string(*u.Priority)
	}
	if u.CustomerID != nil {
		input["customer"] = *u.CustomerID
	}
	if u.Assignee.IsSet() {
		if id := u.Assignee.EmployeeID(); id != nil {
			input["assignedEmployee"] = *id
		} else {
			input["assignedEmployee"] = nil
		}
	}
	return input
}
