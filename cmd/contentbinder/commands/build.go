package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
	"git.home.luguber.info/inful/contentbinder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Override output.directory"`
	Source string `short:"s" help:"Override source.directory"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Source != "" {
		cfg.Source.Directory = b.Source
	}
	if err := config.CheckDirectories(cfg.Source.Directory, cfg.Output.Directory); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder, _ := newRecorder(cfg)
	s, err := newSession(cfg, recorder, g.Logger)
	if err != nil {
		return err
	}
	stats, err := s.build(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Wrote %d files (%d unchanged, %d removed) to %s\n",
		stats.Written, stats.Unchanged, stats.Removed, cfg.Output.Directory)
	return nil
}

// build runs discover, bind and write once.
func (s *session) build(ctx context.Context) (site.WriteStats, error) {
	start := time.Now()
	files, err := s.discover()
	if err != nil {
		return site.WriteStats{}, err
	}
	if err := s.processor.Process(ctx, files, nil); err != nil {
		return site.WriteStats{}, err
	}

	w := &site.Writer{Root: s.cfg.Output.Directory, Prune: s.cfg.Output.Clean, Logger: s.logger}
	stats, err := w.Write(files)
	if err != nil {
		return stats, err
	}
	s.logger.Info("Output written",
		logfields.Path(s.cfg.Output.Directory),
		logfields.Count(stats.Written),
		logfields.Duration(time.Since(start)))
	return stats, nil
}
