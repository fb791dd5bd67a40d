package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitecheck/internal/checker"
	"github.com/hamed0406/sitecheck/internal/config"
	"github.com/hamed0406/sitecheck/internal/httpapi"
	apimw "github.com/hamed0406/sitecheck/internal/httpapi/middleware"
	"github.com/hamed0406/sitecheck/internal/logging"
	"github.com/hamed0406/sitecheck/internal/metrics"
	"github.com/hamed0406/sitecheck/internal/notify"
	"github.com/hamed0406/sitecheck/internal/probe"
	"github.com/hamed0406/sitecheck/internal/repo/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var resolver probe.Resolver = net.DefaultResolver
	if cfg.DNSServer != "" {
		resolver = probe.NewDNSClient(cfg.DNSServer, 0)
	}

	m := metrics.New(nil)
	opts := []checker.Option{
		checker.WithLogger(logger),
		checker.WithRecorder(m),
		checker.WithObserver(httpapi.DNSObserver(logger, resolver)),
	}
	var notifiers notify.Multi
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		notifiers = append(notifiers, slack)
		logger.Info("slack_enabled")
	}
	if len(notifiers) > 0 {
		opts = append(opts, checker.WithObserver(notify.Observer(notifiers, 10*time.Second, logger)))
	}
	c := checker.New(cfg.CheckerConfig(), nil, opts...)

	api := httpapi.NewServer(logger, c, memory.New(cfg.MaxTracked))
	api.Metrics = m.Handler()

	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api_listen",
			zap.String("addr", cfg.Addr),
			zap.Duration("check_timeout", c.Config().OverallTimeout),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api_listen_error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("api_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_error", zap.Error(err))
	}
}
