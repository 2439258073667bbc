package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	base := config.Default()
	base.Token = "from-file"

	got := applyOverrides(base, Options{PollEvery: 2, APIBase: " http://iot.local:9000 ", Token: "from-flag"})
	if got.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %v, want 2s", got.PollInterval)
	}
	if got.APIBase != "http://iot.local:9000" {
		t.Fatalf("APIBase = %q", got.APIBase)
	}
	if got.Token != "from-flag" {
		t.Fatalf("Token = %q, want from-flag", got.Token)
	}

	kept := applyOverrides(base, Options{})
	if kept.PollInterval != base.PollInterval || kept.APIBase != base.APIBase || kept.Token != "from-file" {
		t.Fatalf("zero options changed config: %+v", kept)
	}
}

func TestNewClientRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.RequestsPerSecond = -1
	if _, err := newClient(cfg, api.NewCredential(""), zap.NewNop()); err == nil {
		t.Fatal("expected error for negative rate limit")
	}

	cfg = config.Default()
	if _, err := newClient(cfg, api.NewCredential(""), zap.NewNop()); err != nil {
		t.Fatalf("newClient(defaults): %v", err)
	}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestLogSession(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	core, logs := observer.New(zapcore.InfoLevel)
	logSession(zap.New(core), api.NewCredential(signed(t, now.Add(-time.Minute))), now)
	if logs.FilterMessage("session token already expired").Len() != 1 {
		t.Fatalf("expired token not reported: %v", logs.All())
	}

	core, logs = observer.New(zapcore.InfoLevel)
	logSession(zap.New(core), api.NewCredential(signed(t, now.Add(time.Hour))), now)
	if logs.FilterMessage("session token").Len() != 1 {
		t.Fatalf("valid token not reported: %v", logs.All())
	}

	core, logs = observer.New(zapcore.InfoLevel)
	logSession(zap.New(core), api.NewCredential("opaque"), now)
	if logs.Len() != 0 {
		t.Fatalf("opaque token should log nothing, got %v", logs.All())
	}
}

func TestRunFailsOnBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("poll_interval = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := Run(context.Background(), Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Run error = %v, want load config failure", err)
	}
}
