package publish

import "fmt"

type SessionStatus string

const (
	STATUS_IDLE      SessionStatus = "idle"
	STATUS_POSTING   SessionStatus = "posting"
	STATUS_COMPLETED SessionStatus = "completed"
	STATUS_ERROR     SessionStatus = "error"
)

// ProgressTracker is the dispatch-progress state machine. It performs no
// network I/O; the orchestrator drives every transition and the caller owns
// how progress is surfaced.
//
//	idle -> posting            first Advance
//	posting -> completed|error Finish, depending on the completion rule
//	completed|error -> idle    Acknowledge
type ProgressTracker struct {
	Status       SessionStatus `json:"status"`
	Current      int           `json:"current"`
	Total        int           `json:"total"`
	CurrentLabel string        `json:"currentLabel,omitempty"`
}

func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{Status: STATUS_IDLE, Total: total}
}

func (t *ProgressTracker) Advance(label string) error {
	if t.Status != STATUS_IDLE && t.Status != STATUS_POSTING {
		return fmt.Errorf("cannot advance progress from %s state", t.Status)
	}
	if t.Current >= t.Total {
		return fmt.Errorf("cannot advance progress past %d groups", t.Total)
	}
	t.Status = STATUS_POSTING
	t.Current++
	t.CurrentLabel = label
	return nil
}

func (t *ProgressTracker) Finish(allSucceeded bool) error {
	if t.Status != STATUS_POSTING {
		return fmt.Errorf("cannot finish progress from %s state", t.Status)
	}
	if allSucceeded {
		t.Status = STATUS_COMPLETED
	} else {
		t.Status = STATUS_ERROR
	}
	t.CurrentLabel = ""
	return nil
}

// Acknowledge resets a terminal tracker after the caller has consumed the
// outcome. No automatic retry happens here.
func (t *ProgressTracker) Acknowledge() error {
	if t.Status != STATUS_COMPLETED && t.Status != STATUS_ERROR {
		return fmt.Errorf("cannot acknowledge progress from %s state", t.Status)
	}
	t.Status = STATUS_IDLE
	t.Current = 0
	t.CurrentLabel = ""
	return nil
}
