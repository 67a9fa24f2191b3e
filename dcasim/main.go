// Command dcasim simulates dollar-cost averaging portfolios over historical prices.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/dca/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	// Completion exits when invoked by the shell completion.
	cmd.Completion().Complete("dcasim")

	cmd.LoadEnv()
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
