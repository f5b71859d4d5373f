package domain

// ResultKind is how a board gesture ended.
type ResultKind string

const (
	// ResultApplied means the remote API accepted the change.
	ResultApplied ResultKind = "applied"
	// ResultRejected means the remote call failed; a failure toast was sent.
	ResultRejected ResultKind = "rejected"
	// ResultSkipped means nothing was sent (no dragged ticket, same column).
	ResultSkipped ResultKind = "skipped"
)

// MutationResult reports the outcome of a drop or an assignment. Remote
// failures end up here rather than as returned errors.
type MutationResult struct {
	Result     ResultKind   `json:"result"`
	TicketID   string       `json:"ticketId,omitempty"`
	From       TicketStatus `json:"from,omitempty"`
	To         TicketStatus `json:"to,omitempty"`
	RolledBack bool         `json:"rolledBack"`
	Message    string       `json:"message,omitempty"`
	Card       *Card        `json:"card,omitempty"`
}

// Applied reports whether the remote API accepted the change.
func (r *MutationResult) Applied() bool {
	return r != nil && r.Result == ResultApplied
}
