package checker

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/sitecheck/internal/probe"
)

type State int

const (
	Pending State = iota
	Resolved
	TimedOut
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Handle is the caller's reference to one check. It resolves exactly once:
// the first of probe completion, timer expiry or Cancel wins and every later
// attempt is dropped.
type Handle struct {
	id        string
	address   string
	startedAt time.Time
	c         *Checker

	once        sync.Once
	done        chan struct{}
	cancelProbe context.CancelFunc

	mu     sync.Mutex
	state  State
	result probe.CheckResult
	timer  Timer
}

func (h *Handle) ID() string           { return h.id }
func (h *Handle) Address() string      { return h.address }
func (h *Handle) StartedAt() time.Time { return h.startedAt }

func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) Result() (probe.CheckResult, bool) {
	select {
	case <-h.done:
		return h.result, true
	default:
		return probe.CheckResult{}, false
	}
}

// Await blocks until the handle resolves. Calling it again returns the same
// value; there is never a second delivery.
func (h *Handle) Await() probe.CheckResult {
	<-h.done
	return h.result
}

// AwaitContext is Await bounded by ctx. A ctx error leaves the check running.
func (h *Handle) AwaitContext(ctx context.Context) (probe.CheckResult, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return probe.CheckResult{}, ctx.Err()
	}
}

// Cancel resolves a pending handle with a cancellation result and reports
// whether it did. On a resolved handle it does nothing.
func (h *Handle) Cancel() bool {
	elapsed := h.c.clock.Now().Sub(h.startedAt)
	return h.resolve(Cancelled, CancelledResult(elapsed))
}

func (h *Handle) expire() {
	h.resolve(TimedOut, TimeoutResult(h.c.cfg.OverallTimeout))
}

func (h *Handle) resolve(state State, res probe.CheckResult) bool {
	won := false
	h.once.Do(func() {
		won = true

		h.mu.Lock()
		h.state = state
		h.result = res
		t := h.timer
		h.mu.Unlock()

		if t != nil {
			t.Stop()
		}
		h.cancelProbe()
		close(h.done)
	})
	if won {
		h.c.finish(h, state, res)
	}
	return won
}
