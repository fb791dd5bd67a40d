package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/sitecheck/internal/probe"
)

const (
	DefaultConnectTimeout = probe.DefaultConnectTimeout
	DefaultReadTimeout    = probe.DefaultReadTimeout
	DefaultOverallTimeout = 30 * time.Second
)

type Config struct {
	ConnectTimeout time.Duration // TCP handshake bound handed to the probe
	ReadTimeout    time.Duration // status line bound handed to the probe
	OverallTimeout time.Duration // longest a caller waits before the synthetic timeout
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		OverallTimeout: DefaultOverallTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.OverallTimeout <= 0 {
		c.OverallTimeout = d.OverallTimeout
	}
	return c
}

// Observer is told about every handle once, right after it resolves. It runs
// on the resolving goroutine and must not block.
type Observer func(h *Handle, res probe.CheckResult)

type Recorder interface {
	CheckStarted()
	CheckFinished(state string, category string, elapsed time.Duration)
}

type Option func(*Checker)

func WithClock(c Clock) Option { return func(k *Checker) { k.clock = c } }
func WithLogger(l *zap.Logger) Option { return func(k *Checker) { k.log = l } }
func WithObserver(o Observer) Option { return func(k *Checker) { k.observers = append(k.observers, o) } }
func WithRecorder(r Recorder) Option { return func(k *Checker) { k.rec = r } }
func WithIDGenerator(f func() string) Option { return func(k *Checker) { k.newID = f } }

type Checker struct {
	cfg       Config
	prober    probe.Prober
	clock     Clock
	log       *zap.Logger
	observers []Observer
	rec       Recorder
	newID     func() string
}

// New builds a Checker. A nil prober means a real HTTP probe using cfg's
// connect and read timeouts.
func New(cfg Config, prober probe.Prober, opts ...Option) *Checker {
	cfg = cfg.withDefaults()
	if prober == nil {
		prober = probe.NewHTTPProbe(probe.Options{
			ConnectTimeout: cfg.ConnectTimeout,
			ReadTimeout:    cfg.ReadTimeout,
		})
	}
	c := &Checker{
		cfg:    cfg,
		prober: prober,
		clock:  realClock{},
		log:    zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Checker) Config() Config { return c.cfg }

func (c *Checker) Start(address string) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		id:          c.newID(),
		address:     probe.NormalizeURL(address),
		startedAt:   c.clock.Now(),
		c:           c,
		done:        make(chan struct{}),
		cancelProbe: cancel,
	}
	if c.rec != nil {
		c.rec.CheckStarted()
	}
	c.log.Info("check_started",
		zap.String("check_id", h.id),
		zap.String("url", h.address),
		zap.Duration("timeout", c.cfg.OverallTimeout),
	)

	// arm before the probe runs so a fast probe always finds a timer to stop
	h.mu.Lock()
	h.timer = c.clock.AfterFunc(c.cfg.OverallTimeout, h.expire)
	h.mu.Unlock()

	go c.run(ctx, h)
	return h
}

// Check starts a check and waits for it. When ctx ends first the handle is
// cancelled and whatever it resolved with is returned.
func (c *Checker) Check(ctx context.Context, address string) probe.CheckResult {
	h := c.Start(address)
	res, err := h.AwaitContext(ctx)
	if err != nil {
		h.Cancel()
		return h.Await()
	}
	return res
}

func (c *Checker) run(ctx context.Context, h *Handle) {
	start := c.clock.Now()
	var res probe.CheckResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				res = probe.FailureResult(fmt.Errorf("panic: %v", r), h.address, c.clock.Now().Sub(start))
			}
		}()
		res = c.prober.Check(ctx, h.address)
	}()

	if !h.resolve(Resolved, res) {
		c.log.Debug("check_result_discarded",
			zap.String("check_id", h.id),
			zap.String("category", string(res.Category)),
			zap.Int64("elapsed_ms", res.ElapsedMS),
		)
	}
}

func (c *Checker) finish(h *Handle, state State, res probe.CheckResult) {
	if c.rec != nil {
		c.rec.CheckFinished(state.String(), string(res.Category), time.Duration(res.ElapsedMS)*time.Millisecond)
	}

	fields := []zap.Field{
		zap.String("check_id", h.id),
		zap.String("url", h.address),
		zap.Bool("available", res.Available),
		zap.String("category", string(res.Category)),
		zap.Int("status", res.StatusCode),
		zap.Int64("elapsed_ms", res.ElapsedMS),
	}
	switch state {
	case TimedOut:
		c.log.Warn("check_timeout", fields...)
	case Cancelled:
		c.log.Info("check_cancelled", fields...)
	default:
		c.log.Info("check_resolved", fields...)
	}

	for _, o := range c.observers {
		o(h, res)
	}
}

// TimeoutResult is the synthetic result delivered when the overall ceiling
// passes first. ElapsedMS is the ceiling itself, not the measured time.
func TimeoutResult(d time.Duration) probe.CheckResult {
	return probe.CheckResult{
		Available: false,
		Message:   fmt.Sprintf("check interrupted: timeout exceeded (%s)", humanSeconds(d)),
		ElapsedMS: d.Milliseconds(),
		Category:  probe.CategoryTimeout,
	}
}

func CancelledResult(elapsed time.Duration) probe.CheckResult {
	if elapsed < 0 {
		elapsed = 0
	}
	return probe.CheckResult{
		Available: false,
		Message:   fmt.Sprintf("%s: check stopped by caller (%d ms)", probe.CategoryCancelled, elapsed.Milliseconds()),
		ElapsedMS: elapsed.Milliseconds(),
		Category:  probe.CategoryCancelled,
	}
}

func humanSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		n := int64(d / time.Second)
		if n == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", n)
	}
	return d.String()
}
