package domain

import (
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// assigneeOp distinguishes "leave alone" from "set" and "clear".
type assigneeOp int

const (
	assigneeUnchanged assigneeOp = iota
	assigneeSet
	assigneeClear
)

// AssigneeChange is a tri-state edit of the assigned employee.
// The zero value leaves the assignee untouched.
type AssigneeChange struct {
	op         assigneeOp
	employeeID string
}

// AssignTo sets the assignee to the given employee.
func AssignTo(employeeID string) AssigneeChange {
	return AssigneeChange{op: assigneeSet, employeeID: employeeID}
}

// Unassign clears the assignee.
func Unassign() AssigneeChange {
	return AssigneeChange{op: assigneeClear}
}

// AssigneeFromPointer maps a nullable employee id to a change: nil or ""
// unassigns, anything else assigns.
func AssigneeFromPointer(employeeID *string) AssigneeChange {
	if employeeID == nil || *employeeID == "" {
		return Unassign()
	}
	return AssignTo(*employeeID)
}

// IsSet reports whether the change touches the assignee at all.
func (c AssigneeChange) IsSet() bool { return c.op != assigneeUnchanged }

// IsClear reports whether the change unassigns.
func (c AssigneeChange) IsClear() bool { return c.op == assigneeClear }

// EmployeeID returns the new assignee; nil when unassigning or unchanged.
func (c AssigneeChange) EmployeeID() *string {
	if c.op != assigneeSet {
		return nil
	}
	id := c.employeeID
	return &id
}

// TicketUpdate is a partial update. Nil pointers are left untouched.
type TicketUpdate struct {
	Title       *string
	Description *string
	Status      *TicketStatus
	Priority    *TicketPriority
	CustomerID  *string
	Assignee    AssigneeChange
}

// StatusUpdate builds the update issued by a drop.
func StatusUpdate(status TicketStatus) TicketUpdate {
	return TicketUpdate{Status: &status}
}

// IsEmpty reports whether the update changes nothing.
func (u TicketUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.CustomerID == nil && !u.Assignee.IsSet()
}

// Validate checks the fields that are present.
func (u TicketUpdate) Validate() error {
	errs := apperrors.NewValidationErrors()

	if u.Title != nil {
		if *u.Title == "" {
			errs.Add("title", "Title is required")
		} else if len(*u.Title) > MaxTitleLength {
			errs.Add("title", "Title must be 255 characters or less")
		}
	}
	if u.Description != nil {
		if *u.Description == "" {
			errs.Add("description", "Description is required")
		} else if len(*u.Description) > MaxDescriptionLength {
			errs.Add("description", "Description must be 10000 characters or less")
		}
	}
	if u.Status != nil && !u.Status.IsValid() {
		errs.Add("status", "Status must be one of: open, in-progress, closed")
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		errs.Add("priority", "Priority must be one of: low, medium, high")
	}
	if u.CustomerID != nil && *u.CustomerID == "" {
		errs.Add("customer", "Customer is required")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ApplyTo returns a copy of the ticket with the update applied locally.
func (u TicketUpdate) ApplyTo(t *Ticket) *Ticket {
	next := t.Clone()
	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.Description != nil {
		next.Description = *u.Description
	}
	if u.Status != nil {
		next.Status = *u.Status
	}
	if u.Priority != nil {
		next.Priority = *u.Priority
	}
	if u.CustomerID != nil {
		next.CustomerID = *u.CustomerID
	}
	if u.Assignee.IsSet() {
		next.AssignedEmployeeID = u.Assignee.EmployeeID()
	}
	return next
}
