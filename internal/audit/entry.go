package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is what happened to one operator line.
type Outcome string

// Outcomes stored in command_log.outcome.
const (
	OutcomeSent         Outcome = "sent"
	OutcomeRejected     Outcome = "rejected"
	OutcomeNotConnected Outcome = "not_connected"
	OutcomeFailed       Outcome = "failed"
)

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSent, OutcomeRejected, OutcomeNotConnected, OutcomeFailed:
		return true
	default:
		return false
	}
}

// Entry is a single journal row.
type Entry struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Input     string    `json:"input"`
	Command   string    `json:"command,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter controls which entries List returns.
type Filter struct {
	Outcome Outcome // optional
	RunID   string  // optional
	Limit   int     // default 50, max 200
	Offset  int
}

// ListResult contains one page of entries, newest first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// NewRunID returns an identifier for one process run.
func NewRunID() string {
	return "run-" + uuid.NewString()[:8]
}
