package model

import "time"

type AttemptStatus string

const (
	StatusOpening AttemptStatus = "opening"
	StatusSending AttemptStatus = "sending"
	StatusSent    AttemptStatus = "sent"
	StatusFailed  AttemptStatus = "failed"
)

func (s AttemptStatus) String() string {
	return string(s)
}

// Attempt is one entry of the in-memory delivery log. The log is ordered,
// append-only and lives for a single run; nothing is persisted.
type Attempt struct {
	At     time.Time     `json:"at"`
	Number string        `json:"number"`
	Status AttemptStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
}

// Summary describes a whole run after (or while) it executes.
type Summary struct {
	RunID      string     `json:"run_id"`
	Total      int        `json:"total"`
	Done       int        `json:"done"`
	Sent       int        `json:"sent"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Stopped    bool       `json:"stopped"`
}
