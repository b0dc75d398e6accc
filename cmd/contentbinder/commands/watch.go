package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
	"git.home.luguber.info/inful/contentbinder/internal/metrics"
	"git.home.luguber.info/inful/contentbinder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period after the last change before rebuilding" default:"300ms"`
}

func (wc *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	logger := g.Logger

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder, reg := newRecorder(cfg)
	if reg != nil && cfg.Metrics.Listen != "" {
		stop := serveMetrics(cfg.Metrics, reg, logger)
		defer stop()
	}

	s, err := newSession(cfg, recorder, logger)
	if err != nil {
		return err
	}
	// A failed first build is logged; watching starts regardless.
	if _, err := s.build(ctx); err != nil {
		logger.Error("Initial build failed", logfields.Error(err))
	}

	w, err := watch.New(watch.Options{
		Dirs:     []string{cfg.Source.Directory},
		Files:    []string{root.Config},
		Ignore:   []string{cfg.Output.Directory},
		Debounce: wc.Debounce,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	logger.Info("Watching for changes",
		logfields.Path(cfg.Source.Directory),
		slog.String("config", root.Config))

	err = w.Run(ctx, func(ctx context.Context) error {
		s = reload(s, root.Config, recorder, logger)
		_, err := s.build(ctx)
		return err
	})
	logger.Info("Watcher stopped")
	return err
}

// reload rebuilds the session from the configuration file, keeping the
// current one when the file no longer loads.
func reload(current *session, path string, recorder metrics.Recorder, logger *slog.Logger) *session {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("Configuration reload failed; keeping previous configuration", logfields.Error(err))
		return current
	}
	next, err := newSession(cfg, recorder, logger)
	if err != nil {
		logger.Error("Configuration reload failed; keeping previous configuration", logfields.Error(err))
		return current
	}
	return next
}

// serveMetrics exposes reg on the configured listen address until the
// returned stop function is called.
func serveMetrics(mc config.MetricsConfig, reg *prom.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle(mc.Path, metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: mc.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Serving metrics", slog.String("addr", mc.Listen), logfields.Path(mc.Path))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server shutdown error", logfields.Error(err))
		}
	}
}
