package commands

import "fmt"

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	s, err := newSession(cfg, nil, g.Logger)
	if err != nil {
		return err
	}
	files, err := s.discover()
	if err != nil {
		return err
	}
	bound, err := s.processor.Validate(files)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Configuration OK: %d source files, %d with directives\n", len(files), bound)
	return nil
}
