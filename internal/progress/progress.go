// Package progress drives the looping progress animation shown while a
// check runs. It knows nothing about the network checker.
package progress

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Outcome int

const (
	Signalled Outcome = iota // the stop channel closed
	TimedOut                 // the spinner's own timeout passed
	Cancelled                // ctx ended
)

func (o Outcome) String() string {
	switch o {
	case Signalled:
		return "signalled"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

type Spinner struct {
	Interval time.Duration
	Steps    int
}

func Demo() Spinner { return Spinner{Interval: 50 * time.Millisecond, Steps: 100} }

func ForCheck() Spinner { return Spinner{Interval: 300 * time.Millisecond, Steps: 100} }

// Run calls tick with the current percentage until stop closes, timeout
// passes (timeout <= 0 disables it) or ctx ends.
func (s Spinner) Run(ctx context.Context, stop <-chan struct{}, timeout time.Duration, tick func(percent int)) Outcome {
	if s.Interval <= 0 {
		s.Interval = Demo().Interval
	}
	if s.Steps <= 0 {
		s.Steps = Demo().Steps
	}

	t := time.NewTicker(s.Interval)
	defer t.Stop()

	var expired <-chan time.Time
	if timeout > 0 {
		tm := time.NewTimer(timeout)
		defer tm.Stop()
		expired = tm.C
	}

	step := 0
	for {
		select {
		case <-stop:
			return Signalled
		case <-expired:
			return TimedOut
		case <-ctx.Done():
			return Cancelled
		case <-t.C:
			step = (step + 1) % s.Steps
			tick(step * 100 / s.Steps)
		}
	}
}

const ringSize = 12

func Render(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	lit := percent * ringSize / 100
	return fmt.Sprintf("(%s%s) %3d%%", strings.Repeat("●", lit), strings.Repeat("○", ringSize-lit), percent)
}
