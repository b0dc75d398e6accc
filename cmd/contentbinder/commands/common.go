package commands

import (
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
	"git.home.luguber.info/inful/contentbinder/internal/metrics"
	"git.home.luguber.info/inful/contentbinder/internal/processor"
	"git.home.luguber.info/inful/contentbinder/internal/registry"
	"git.home.luguber.info/inful/contentbinder/internal/site"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"contentbinder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Bind source files to remote content and write the result"`
	Validate ValidateCmd `cmd:"" help:"Check the configuration and every directive without fetching"`
	Watch    WatchCmd    `cmd:"" help:"Build, then rebuild whenever sources or the configuration change"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; it installs a bootstrap logger until
// the configuration selects the real one.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = newLogger(config.LoggingConfig{}, c.Verbose, g.stderr())
	slog.SetDefault(g.Logger)
	return nil
}

func (g *Global) stdout() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

func (g *Global) stderr() io.Writer {
	if g.Stderr != nil {
		return g.Stderr
	}
	return os.Stderr
}

// newLogger builds the slog handler selected by the logging section. -v
// forces debug.
func newLogger(lc config.LoggingConfig, verbose bool, w io.Writer) *slog.Logger {
	level := config.NormalizeLogLevel(string(lc.Level)).SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.NormalizeLogFormat(string(lc.Format)) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig reads the configuration and swaps in the logger it selects.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = newLogger(cfg.Logging, root.Verbose, g.stderr())
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// session wires one configuration into a processor and writer.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	recorder  metrics.Recorder
	processor *processor.Processor
}

func newSession(cfg *config.Config, recorder metrics.Recorder, logger *slog.Logger) (*session, error) {
	clients := registry.New(registry.HTTPFactory(cfg, recorder, logger))
	proc, err := processor.New(processor.Options{
		Config:   cfg,
		Clients:  clients,
		Recorder: recorder,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, recorder: recorder, processor: proc}, nil
}

// newRecorder returns a Prometheus recorder on a fresh registry when metrics
// are enabled, and a no-op recorder otherwise.
func newRecorder(cfg *config.Config) (metrics.Recorder, *prom.Registry) {
	if !cfg.Metrics.Enabled {
		return metrics.NoopRecorder{}, nil
	}
	reg := prom.NewRegistry()
	return metrics.NewPrometheusRecorder(reg), reg
}

// discover reads the source tree. A missing source directory yields an empty
// set so entry_files configurations need no placeholder directory.
func (s *session) discover() (site.Files, error) {
	src := s.cfg.Source
	if _, err := os.Stat(src.Directory); stderrors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Source directory does not exist; starting from an empty file set",
			logfields.Path(src.Directory))
		return site.Files{}, nil
	}
	files, err := site.Discover(src.Directory, src.DirectiveKey, src.Extensions)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Discovered source files", logfields.Count(len(files)), logfields.Path(src.Directory))
	return files, nil
}
