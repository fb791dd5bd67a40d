package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitecheck/internal/checker"
	"github.com/hamed0406/sitecheck/internal/probe"
)

// ResultText renders a finished check the way the result dialog shows it.
func ResultText(address string, res probe.CheckResult) (title, text string) {
	title = "Website unavailable"
	if res.Available {
		title = "Website available"
	}
	text = fmt.Sprintf("URL: %s\nResult: %s\nResponse time: %d ms", address, res.Message, res.ElapsedMS)
	return title, text
}

// Observer forwards every resolved check to n. Sending happens on its own
// goroutine, bounded by timeout, so the checker is never held up.
func Observer(n Notifier, timeout time.Duration, log *zap.Logger) checker.Observer {
	if log == nil {
		log = zap.NewNop()
	}
	return func(h *checker.Handle, res probe.CheckResult) {
		title, text := ResultText(h.Address(), res)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := n.Send(ctx, title, text); err != nil {
				log.Warn("notify_error", zap.String("check_id", h.ID()), zap.Error(err))
			}
		}()
	}
}
