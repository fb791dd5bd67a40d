package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hamed0406/sitecheck/internal/checker"
	"github.com/hamed0406/sitecheck/internal/config"
	"github.com/hamed0406/sitecheck/internal/logging"
	"github.com/hamed0406/sitecheck/internal/notify"
	"github.com/hamed0406/sitecheck/internal/probe"
	"github.com/hamed0406/sitecheck/internal/progress"
)

const demoTimeout = 30 * time.Second

func main() {
	demo := flag.BoolP("demo", "d", false, "run the progress animation until Enter is pressed or 30 seconds pass")
	timeout := flag.DurationP("timeout", "t", 0, "overall check timeout (default CHECK_TIMEOUT_MS)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *demo {
		runDemo(ctx, os.Stdin, os.Stdout)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	address := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if address == "" {
		fmt.Print("Enter a website address (e.g., example.com): ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		address = strings.TrimSpace(line)
	}
	if address == "" {
		fmt.Fprintln(os.Stderr, "No address given.")
		os.Exit(2)
	}

	cc := cfg.CheckerConfig()
	if *timeout > 0 {
		cc.OverallTimeout = *timeout
	}
	c := checker.New(cc, nil, checker.WithLogger(logger))
	res := runCheck(ctx, c, address, os.Stdout, logger)
	if !res.Available {
		os.Exit(1)
	}
}

// runCheck animates the progress ring while the check runs and prints the
// result once the handle resolves. Interrupting cancels the check.
func runCheck(ctx context.Context, c *checker.Checker, address string, out io.Writer, logger *zap.Logger) probe.CheckResult {
	h := c.Start(address)
	outcome := progress.ForCheck().Run(ctx, h.Done(), 0, func(percent int) {
		fmt.Fprintf(out, "\r%s Checking %s", progress.Render(percent), h.Address())
	})
	if outcome == progress.Cancelled && h.Cancel() {
		logger.Info("check_interrupted", zap.String("check_id", h.ID()))
	}
	res := h.Await()

	title, text := notify.ResultText(h.Address(), res)
	fmt.Fprintf(out, "\r%s\n%s\n%s\n", strings.Repeat(" ", 40+len(h.Address())), title, text)
	return res
}

func runDemo(ctx context.Context, in io.Reader, out io.Writer) {
	enter := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(in).ReadString('\n')
		close(enter)
	}()

	fmt.Fprintln(out, "Press Enter to stop.")
	outcome := progress.Demo().Run(ctx, enter, demoTimeout, func(percent int) {
		fmt.Fprintf(out, "\r%s", progress.Render(percent))
	})
	fmt.Fprintf(out, "\nstopped: %s\n", outcome)
}
