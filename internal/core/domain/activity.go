package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityAction names the board gesture that was attempted.
type ActivityAction string

const (
	ActionMove   ActivityAction = "move"
	ActionAssign ActivityAction = "assign"
	ActionCreate ActivityAction = "create"
	ActionUpdate ActivityAction = "update"
	ActionDelete ActivityAction = "delete"
)

// ActivityOutcome records how the remote call ended.
type ActivityOutcome string

const (
	OutcomeSucceeded ActivityOutcome = "succeeded"
	OutcomeFailed    ActivityOutcome = "failed"
)

// Activity is one journal entry for a board mutation attempt.
type Activity struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"userId"`
	TicketID  string          `json:"ticketId"`
	Action    ActivityAction  `json:"action"`
	Outcome   ActivityOutcome `json:"outcome"`
	Detail    string          `json:"detail"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewActivity builds a journal entry stamped now.
func NewActivity(userID, ticketID string, action ActivityAction, err error, detail string) *Activity {
	outcome := OutcomeSucceeded
	if err != nil {
		outcome = OutcomeFailed
		if detail == "" {
			detail = err.Error()
		} else {
			detail = detail + ": " + err.Error()
		}
	}
	return &Activity{
		ID:        uuid.New(),
		UserID:    userID,
		TicketID:  ticketID,
		Action:    action,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}
