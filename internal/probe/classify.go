package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"time"
)

// malformedError marks a target the HTTP client could not turn into a request.
// It surfaces as a connection-class failure.
type malformedError struct{ err error }

func (e *malformedError) Error() string { return e.err.Error() }
func (e *malformedError) Unwrap() error { return e.err }

// Classify maps a transport error to a Category. The checks run in priority
// order: unknown host, connection failure, timeout, I/O, unexpected.
func Classify(err error) Category {
	if err == nil {
		return CategoryOK
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryUnknownHost
	}

	var bad *malformedError
	if errors.As(err, &bad) {
		return CategoryConnectionRefused
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return CategoryConnectionRefused
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout() {
		return CategoryConnectionRefused
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}

	if errors.Is(err, context.Canceled) {
		return CategoryCancelled
	}

	var errno syscall.Errno
	if errors.As(err, &opErr) || errors.As(err, &errno) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return CategoryIOError
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return CategoryIOError
	}

	return CategoryUnexpected
}

func StatusResult(code int, elapsed time.Duration) CheckResult {
	ms := elapsedMS(elapsed)
	cat := CategoryHTTPStatus
	if code >= 200 && code < 400 {
		cat = CategoryOK
	}
	return CheckResult{
		Available:  cat == CategoryOK,
		Message:    fmt.Sprintf("%s: HTTP %d (%d ms)", cat, code, ms),
		ElapsedMS:  ms,
		Category:   cat,
		StatusCode: code,
	}
}

func FailureResult(err error, target string, elapsed time.Duration) CheckResult {
	ms := elapsedMS(elapsed)
	cat := Classify(err)
	var msg string
	switch cat {
	case CategoryUnknownHost:
		msg = fmt.Sprintf("%s: cannot find host %s (%d ms)", cat, ExtractHost(target), ms)
	case CategoryConnectionRefused, CategoryTimeout:
		msg = fmt.Sprintf("%s (%d ms)", cat, ms)
	case CategoryCancelled:
		msg = fmt.Sprintf("%s: check stopped by caller (%d ms)", cat, ms)
	default:
		msg = fmt.Sprintf("%s: %s (%d ms)", cat, detail(err), ms)
	}
	return CheckResult{Available: false, Message: msg, ElapsedMS: ms, Category: cat}
}

func detail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func elapsedMS(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
