package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/dca"
	"github.com/etnz/dca/chart"
	"github.com/etnz/dca/renderer"
	"github.com/etnz/dca/store"
	"github.com/google/subcommands"
)

// simulateCmd holds the flags for the 'simulate' subcommand.
type simulateCmd struct {
	config    string
	market    string
	store     string
	samples   string
	charts    string
	table     bool
	purchases bool
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "run a dollar-cost averaging simulation" }
func (*simulateCmd) Usage() string {
	return `dcasim simulate -config <sim.yaml> [-market <market.jsonl>] [-store <runs.db>] [-samples <out.jsonl>] [-charts <dir>] [-table] [-purchases]

  Simulates the configured portfolio over the market data and displays a summary.

  The configuration is a YAML file:

    currency: EUR
    annual_fee: 0
    start: 2015-01-01
    end: 2024-12-31
    initial_contribution: 1000
    monthly_contribution: 200
    trade_interval: 1
    instruments_per_round: 1
    instruments:
      - ticker: VWCE
        weight: 0.8
        absolute_fee: 1
        proportional_fee: 0.001
      - ticker: AGGH
        weight: 0.2

  Every ticker must have prices in the market data file (see 'dcasim fetch').
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "sim.yaml", "Simulation configuration file (YAML).")
	f.StringVar(&c.market, "market", env(envMarketFile, "market.jsonl"), "Market data file (JSONL). Defaults to $"+envMarketFile+".")
	f.StringVar(&c.store, "store", env(envStoreFile, ""), "Archive the run in this SQLite database. Defaults to $"+envStoreFile+".")
	f.StringVar(&c.samples, "samples", "", "Write the time series to this file (JSONL).")
	f.StringVar(&c.charts, "charts", "", "Write PNG charts to this directory.")
	f.BoolVar(&c.table, "table", false, "Display the time series.")
	f.BoolVar(&c.purchases, "purchases", false, "Display every purchase.")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()

	cfg, err := dca.LoadConfig(c.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	m, err := dca.LoadMarket(c.market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market data: %v\n", err)
		return subcommands.ExitFailure
	}
	p, err := cfg.Portfolio(m)
	if errors.Is(err, dca.ErrUnknownTicker) {
		fmt.Fprintf(os.Stderr, "Error: %v\nUse 'dcasim fetch' to add its prices to %s.\n", err, c.market)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := dca.CheckAlignment(p, cfg.End); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nMarket data must extend to a day, on or after the end, priced for every instrument.\n", err)
		return subcommands.ExitFailure
	}

	logger.Debug().Stringer("portfolio", p).Stringer("start", cfg.Start).Stringer("end", cfg.End).Msg("simulating")
	res := dca.NewSimulation(p, cfg, dca.WithLogger(logger)).Run()

	if c.samples != "" {
		if err := writeSamples(c.samples, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing time series: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if c.charts != "" {
		files, err := chart.WriteAll(c.charts, res)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error drawing charts: %v\n", err)
			return subcommands.ExitFailure
		}
		logger.Info().Strs("files", files).Msg("charts written")
	}
	if c.store != "" {
		s, err := store.Open(c.store, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening run archive: %v\n", err)
			return subcommands.ExitFailure
		}
		defer s.Close()
		if _, err := s.Save(ctx, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error archiving run: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	var b strings.Builder
	b.WriteString(renderer.SummaryMarkdown(res))
	if c.table {
		b.WriteString("\n")
		b.WriteString(renderer.SamplesMarkdown(res))
	}
	if c.purchases {
		b.WriteString("\n")
		b.WriteString(renderer.PurchasesMarkdown(res))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

func writeSamples(filename string, res *dca.Result) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := dca.EncodeSamples(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
