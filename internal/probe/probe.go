package probe

import (
	"context"
	"strings"
)

type Category string

const (
	CategoryOK                Category = "available"
	CategoryHTTPStatus        Category = "unavailable"
	CategoryUnknownHost       Category = "unknown host"
	CategoryConnectionRefused Category = "connection error"
	CategoryTimeout           Category = "timeout"
	CategoryIOError           Category = "I/O error"
	CategoryUnexpected        Category = "unexpected error"
	CategoryCancelled         Category = "cancelled"
)

// CheckResult is the terminal outcome of a single reachability check.
type CheckResult struct {
	Available  bool     `json:"available"`
	Message    string   `json:"message"`
	ElapsedMS  int64    `json:"elapsed_ms"`
	Category   Category `json:"category"`
	StatusCode int      `json:"status_code,omitempty"`
}

type Prober interface {
	Check(ctx context.Context, target string) CheckResult
}

type ProberFunc func(ctx context.Context, target string) CheckResult

func (f ProberFunc) Check(ctx context.Context, target string) CheckResult { return f(ctx, target) }

// NormalizeURL prepends http:// unless the address already carries an
// http or https scheme. Nothing else is validated.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "http://" + s
}
