// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hamed0406/sitecheck/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		os.Exit(1)
	}
	if !report(cfg, os.Stdout, os.Stderr) {
		os.Exit(1)
	}
}

// report prints one line per setting and returns false when the API would
// refuse every request.
func report(cfg config.Config, out, errOut io.Writer) bool {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(errOut, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(errOut, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(out, "✔", msg) }

	if len(cfg.AdminAPIKeys) == 0 {
		fail("ADMIN_API_KEYS is empty (POST/DELETE /api/checks will 401).")
	}
	if len(cfg.PublicAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS is empty; only admin keys can read checks.")
	}

	ok("ADDR=" + cfg.Addr)
	ok(fmt.Sprintf("timeouts: connect=%s read=%s check=%s", cfg.ConnectTimeout, cfg.ReadTimeout, cfg.CheckTimeout))
	if cfg.ConnectTimeout+cfg.ReadTimeout > cfg.CheckTimeout {
		warn("CONNECT_TIMEOUT_MS + READ_TIMEOUT_MS exceeds CHECK_TIMEOUT_MS; slow sites will get the synthetic timeout result.")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; any origin is allowed by CORS.")
	} else {
		ok(fmt.Sprintf("ALLOWED_ORIGINS=%v", cfg.AllowedOrigins))
	}

	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK empty; results are only logged.")
	} else {
		ok("SLACK_WEBHOOK present")
	}

	if failed {
		return false
	}
	ok("preflight passed")
	return true
}
