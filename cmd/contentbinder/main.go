package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/contentbinder/cmd/contentbinder/commands"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	parser := kong.Parse(&cli,
		kong.Name("contentbinder"),
		kong.Description("Bind static source files to content from a headless content API."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	err := parser.Run(global, &cli)
	logger := global.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errors.NewCLIErrorAdapter(cli.Verbose, logger).HandleError(err)
}
