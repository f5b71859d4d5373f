package domain

import "time"

// EventType defines the type of real-time board event.
type EventType string

const (
	EventBoardRefreshed EventType = "board_refreshed"
	EventTicketMoved    EventType = "ticket_moved"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventToast          EventType = "toast"
	EventPong           EventType = "pong"
)

// Event is the payload sent over WebSocket to one user's connections.
type Event struct {
	Type     EventType `json:"type"`
	Payload  any       `json:"payload,omitempty"`
	TicketID string    `json:"ticketId,omitempty"`
	UserID   string    `json:"-"` // routing only
	SentAt   time.Time `json:"sentAt"`
}

// NewEvent stamps an event for the given user.
func NewEvent(userID string, eventType EventType, ticketID string, payload any) Event {
	return Event{
		Type:     eventType,
		Payload:  payload,
		TicketID: ticketID,
		UserID:   userID,
		SentAt:   time.Now().UTC(),
	}
}

// ToastLevel is the visual kind of a toast.
type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

// Toast is a transient user-facing notification.
type Toast struct {
	Level   ToastLevel `json:"level"`
	Message string     `json:"message"`
}

// SuccessToast builds a success toast.
func SuccessToast(message string) Toast {
	return Toast{Level: ToastSuccess, Message: message}
}

// ErrorToast builds an error toast.
func ErrorToast(message string) Toast {
	return Toast{Level: ToastError, Message: message}
}

// Toast messages shown by the board.
const (
	MsgStatusUpdated      = "Ticket status updated successfully"
	MsgStatusFailed       = "Failed to update ticket status"
	MsgEmployeeAssigned   = "Employee assigned successfully"
	MsgEmployeeUnassigned = "Employee unassigned successfully"
	MsgAssignFailed       = "Failed to update employee assignment"
	MsgTicketDeleted      = "Ticket deleted successfully"
	MsgDeleteFailed       = "Failed to delete ticket"
	MsgTicketCreated      = "Ticket created successfully"
	MsgCreateFailed       = "Failed to create ticket"
	MsgTicketUpdated      = "Ticket updated successfully"
	MsgUpdateFailed       = "Failed to update ticket"
	MsgTicketIDRequired   = "Ticket ID is required"
	MsgFetchFailed        = "An error occurred while fetching tickets"
)
