package domain

import (
	"time"

	"github.com/hamed0406/sitecheck/internal/checker"
	"github.com/hamed0406/sitecheck/internal/probe"
)

type CheckID string

// Check is the JSON view of a handle at one point in time.
type Check struct {
	ID        CheckID            `json:"id"`
	URL       string             `json:"url"`
	State     string             `json:"state"`
	StartedAt time.Time          `json:"started_at"`
	Result    *probe.CheckResult `json:"result"` // nil while pending
}

// CheckFromHandle snapshots h.
func CheckFromHandle(h *checker.Handle) Check {
	c := Check{
		ID:        CheckID(h.ID()),
		URL:       h.Address(),
		StartedAt: h.StartedAt().UTC(),
	}
	c.State = checker.Pending.String()
	if res, ok := h.Result(); ok {
		// state is terminal once the result is visible
		c.Result = &res
		c.State = h.State().String()
	}
	return c
}
