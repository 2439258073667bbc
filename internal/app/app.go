package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/config"
	"github.com/sson6926/iotdash/internal/logging"
	"github.com/sson6926/iotdash/internal/metrics"
	"github.com/sson6926/iotdash/internal/prefs"
	"github.com/sson6926/iotdash/internal/ui"
)

// Options configure the iotdash application. Non-zero fields override the
// config file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/iotdash/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
	APIBase    string
	Token      string
}

// Run boots the iotdash TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = applyOverrides(cfg, opts)

	log, closeLog, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cred := api.NewCredential(cfg.Token)
	defer cred.Close()
	logSession(log, cred, time.Now())

	client, err := newClient(cfg, cred, log)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	recorder := metrics.New()
	if cfg.MetricsAddr != "" {
		addr, err := recorder.Serve(ctx, cfg.MetricsAddr, log.Named("metrics"))
		if err != nil {
			return fmt.Errorf("start metrics endpoint: %w", err)
		}
		log.Info("metrics endpoint listening", zap.String("addr", addr.String()))
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warn("preferences unreadable, using defaults", zap.Error(err))
	}

	log.Info("starting dashboard",
		zap.String("api", cfg.APIBase),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.String("view", userPrefs.LastView),
	)

	return ui.Run(ui.Options{
		Context:         ctx,
		Backend:         client,
		Logger:          log,
		Observer:        recorder,
		APIBase:         cfg.APIBase,
		PollInterval:    cfg.PollInterval,
		DashboardWindow: cfg.DashboardWindow,
		SensorWindow:    cfg.SensorWindow,
		PageSize:        cfg.PageSize,
		ThemeName:       userPrefs.Theme,
		InitialView:     userPrefs.LastView,
		PrefsPath:       opts.PrefsPath,
	})
}

// applyOverrides layers command-line values over the loaded config.
func applyOverrides(cfg config.Config, opts Options) config.Config {
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}
	if v := strings.TrimSpace(opts.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(opts.Token); v != "" {
		cfg.Token = v
	}
	return cfg
}

func newClient(cfg config.Config, cred *api.Credential, log *zap.Logger) (*api.Client, error) {
	return api.NewClient(cfg.APIBase,
		api.WithCredential(cred),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond),
		api.WithLogger(log.Named("api")),
	)
}

// logSession records when the session token expires. An expired token is
// not fatal: every request fails with ErrCredentialExpired and the views
// show it in their banner.
func logSession(log *zap.Logger, cred *api.Credential, now time.Time) {
	exp, ok := cred.ExpiresAt()
	if !ok {
		return
	}
	if !now.Before(exp) {
		log.Warn("session token already expired", zap.Time("expired_at", exp))
		return
	}
	log.Info("session token", zap.Time("expires_at", exp), zap.Duration("remaining", exp.Sub(now)))
}
