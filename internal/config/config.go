package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/hamed0406/sitecheck/internal/checker"
)

type Config struct {
	Addr           string        // API bind address, e.g., "127.0.0.1:8080" or ":8080" in Docker
	LogDir         string        // logs directory
	LogLevel       string        // debug | info | warn | error
	ConnectTimeout time.Duration // TCP handshake bound per probe
	ReadTimeout    time.Duration // wait for the status line per probe
	CheckTimeout   time.Duration // overall ceiling before the synthetic timeout result
	PublicAPIKeys  []string
	AdminAPIKeys   []string
	AllowedOrigins []string // empty allows any origin
	PublicRPM      int
	PublicBurst    int
	AdminRPM       int
	AdminBurst     int
	SlackWebhook   string
	DNSServer      string // host[:port] for unknown-host diagnostics; empty uses the system resolver
	MaxTracked     int    // handles kept in memory by the API
}

// CheckerConfig is the slice of Config the checker needs.
func (c Config) CheckerConfig() checker.Config {
	return checker.Config{
		ConnectTimeout: c.ConnectTimeout,
		ReadTimeout:    c.ReadTimeout,
		OverallTimeout: c.CheckTimeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")

	v.SetDefault("connect_timeout_ms", checker.DefaultConnectTimeout.Milliseconds())
	v.SetDefault("read_timeout_ms", checker.DefaultReadTimeout.Milliseconds())
	v.SetDefault("check_timeout_ms", checker.DefaultOverallTimeout.Milliseconds())

	v.SetDefault("public_api_keys", "")
	v.SetDefault("admin_api_keys", "")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("public_rpm", 120)
	v.SetDefault("public_burst", 60)
	v.SetDefault("admin_rpm", 60)
	v.SetDefault("admin_burst", 30)
	v.SetDefault("slack_webhook", "")
	v.SetDefault("dns_server", "")
	v.SetDefault("max_tracked_checks", 1000)
}

// Load reads defaults, then an optional sitecheck.yaml from . or ./configs,
// then environment variables (CHECK_TIMEOUT_MS, ADDR, ...), later sources
// winning. The result is validated.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("sitecheck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Addr:           strings.TrimSpace(v.GetString("addr")),
		LogDir:         strings.TrimSpace(v.GetString("log_dir")),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		ConnectTimeout: time.Duration(v.GetInt64("connect_timeout_ms")) * time.Millisecond,
		ReadTimeout:    time.Duration(v.GetInt64("read_timeout_ms")) * time.Millisecond,
		CheckTimeout:   time.Duration(v.GetInt64("check_timeout_ms")) * time.Millisecond,
		PublicAPIKeys:  splitList(v.GetString("public_api_keys")),
		AdminAPIKeys:   splitList(v.GetString("admin_api_keys")),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),
		PublicRPM:      v.GetInt("public_rpm"),
		PublicBurst:    v.GetInt("public_burst"),
		AdminRPM:       v.GetInt("admin_rpm"),
		AdminBurst:     v.GetInt("admin_burst"),
		SlackWebhook:   strings.TrimSpace(v.GetString("slack_webhook")),
		DNSServer:      strings.TrimSpace(v.GetString("dns_server")),
		MaxTracked:     v.GetInt("max_tracked_checks"),
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, errors.New("addr is empty"))
	}
	if c.LogDir == "" {
		err = multierr.Append(err, errors.New("log_dir is empty"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.ConnectTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("connect_timeout_ms must be > 0, got %s", c.ConnectTimeout))
	}
	if c.ReadTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("read_timeout_ms must be > 0, got %s", c.ReadTimeout))
	}
	if c.CheckTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("check_timeout_ms must be > 0, got %s", c.CheckTimeout))
	}
	if c.PublicRPM < 0 || c.AdminRPM < 0 || c.PublicBurst < 0 || c.AdminBurst < 0 {
		err = multierr.Append(err, errors.New("rate limits must not be negative"))
	}
	if c.MaxTracked < 1 {
		err = multierr.Append(err, fmt.Errorf("max_tracked_checks must be >= 1, got %d", c.MaxTracked))
	}
	return err
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
