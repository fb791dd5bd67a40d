package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8080" || cfg.LogDir != "logs" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	cc := cfg.CheckerConfig()
	if cc.ConnectTimeout != 5*time.Second || cc.ReadTimeout != 10*time.Second || cc.OverallTimeout != 30*time.Second {
		t.Fatalf("unexpected checker defaults: %+v", cc)
	}
	if cfg.MaxTracked != 1000 || len(cfg.PublicAPIKeys) != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_ParsesEnv(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PUBLIC_API_KEYS", "pub_a, pub_b")
	t.Setenv("ADMIN_API_KEYS", "adm_x")
	t.Setenv("ALLOWED_ORIGINS", "https://ui.example")
	t.Setenv("CONNECT_TIMEOUT_MS", "1234")
	t.Setenv("READ_TIMEOUT_MS", "2500")
	t.Setenv("CHECK_TIMEOUT_MS", "7000")
	t.Setenv("PUBLIC_RPM", "111")
	t.Setenv("PUBLIC_BURST", "22")
	t.Setenv("MAX_TRACKED_CHECKS", "5")
	t.Setenv("SLACK_WEBHOOK", " https://hooks.example/x ")
	t.Setenv("DNS_SERVER", "1.1.1.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" || cfg.LogLevel != "debug" {
		t.Fatalf("addr/logdir/level wrong: %+v", cfg)
	}
	if len(cfg.PublicAPIKeys) != 2 || cfg.PublicAPIKeys[1] != "pub_b" {
		t.Fatalf("public keys wrong: %+v", cfg.PublicAPIKeys)
	}
	if len(cfg.AdminAPIKeys) != 1 || cfg.AdminAPIKeys[0] != "adm_x" {
		t.Fatalf("admin keys wrong: %+v", cfg.AdminAPIKeys)
	}
	if cfg.ConnectTimeout != 1234*time.Millisecond || cfg.ReadTimeout != 2500*time.Millisecond || cfg.CheckTimeout != 7*time.Second {
		t.Fatalf("timeouts wrong: %+v", cfg)
	}
	if cfg.PublicRPM != 111 || cfg.PublicBurst != 22 || cfg.MaxTracked != 5 {
		t.Fatalf("limits wrong: %+v", cfg)
	}
	if cfg.SlackWebhook != "https://hooks.example/x" || cfg.AllowedOrigins[0] != "https://ui.example" {
		t.Fatalf("webhook/origins wrong: %+v", cfg)
	}
	if cfg.DNSServer != "1.1.1.1" {
		t.Fatalf("dns server wrong: %q", cfg.DNSServer)
	}
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "configs"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "addr: \":7070\"\ncheck_timeout_ms: 15000\n"
	if err := os.WriteFile(filepath.Join(dir, "configs", "sitecheck.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	// env still wins over the file
	t.Setenv("CHECK_TIMEOUT_MS", "20000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("want addr from file, got %q", cfg.Addr)
	}
	if cfg.CheckTimeout != 20*time.Second {
		t.Fatalf("want env override, got %s", cfg.CheckTimeout)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("CHECK_TIMEOUT_MS", "0")
	t.Setenv("MAX_TRACKED_CHECKS", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("want validation error")
	}
	for _, want := range []string{"log_level", "check_timeout_ms", "max_tracked_checks"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}
