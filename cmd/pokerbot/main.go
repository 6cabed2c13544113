package main

import (
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	NoColor bool             `help:"Disable coloured output"`

	Run   RunCmd   `cmd:"" help:"Play a match against a server"`
	Eval  EvalCmd  `cmd:"" help:"Rank hands of 5 to 7 cards"`
	Serve ServeCmd `cmd:"" help:"Run a practice dealer"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerbot"),
		kong.Description("Heads-up poker bot client"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	if cli.NoColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
