package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dca"
	"github.com/etnz/dca/renderer"
	"github.com/etnz/dca/store"
	"github.com/google/subcommands"
	"github.com/google/uuid"
)

type runsCmd struct {
	store string
	id    string
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list archived simulation runs" }
func (*runsCmd) Usage() string {
	return `dcasim runs [-store <runs.db>] [-id <run>]

  Lists the runs archived by 'dcasim simulate -store', or displays the time
  series of a single run.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.store, "store", env(envStoreFile, "runs.db"), "Run archive (SQLite). Defaults to $"+envStoreFile+".")
	f.StringVar(&c.id, "id", "", "Display the time series of this run.")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()

	s, err := store.Open(c.store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run archive: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	runs, err := s.Runs(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.id == "" {
		printMarkdown(renderer.RunsMarkdown(runs))
		return subcommands.ExitSuccess
	}

	id, err := uuid.Parse(c.id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -id: %v\n", err)
		return subcommands.ExitUsageError
	}
	samples, err := s.Samples(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	res := &dca.Result{Samples: samples}
	for _, run := range runs {
		if run.ID == id {
			res.Currency = run.Currency
			res.Instruments = run.Instruments
		}
	}
	printMarkdown(renderer.SamplesMarkdown(res))
	return subcommands.ExitSuccess
}
