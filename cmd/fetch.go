package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dca"
	"github.com/etnz/dca/date"
	"github.com/etnz/dca/eodhd"
	"github.com/google/subcommands"
)

type fetchCmd struct {
	ticker  string
	name    string
	from    string
	to      string
	market  string
	field   string
	apiKey  string
	baseURL string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetches daily prices from EOD Historical Data" }
func (*fetchCmd) Usage() string {
	return `dcasim fetch -ticker <SYMBOL.EXCHANGE> -from <date> [-to <date>] [-name <ticker>] [-market <market.jsonl>] [-field <jsonpath>]

Fetches the daily prices of a ticker from EOD Historical Data, and merges
them into the market data file. Existing prices on the same days are replaced.

Requires an API key set via the -eodhd-api-key flag or the EODHD_API_KEY
environment variable (a .env file in the working directory is read too).

The price is selected in each daily record with a jsonpath expression, it
defaults to the adjusted close ($.adjusted_close). Use $.close for raw prices.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "EODHD ticker to fetch, e.g. VWCE.XETRA.")
	f.StringVar(&c.name, "name", "", "Ticker name in the market data. Defaults to -ticker.")
	f.StringVar(&c.from, "from", "", "First day to fetch.")
	f.StringVar(&c.to, "to", date.Today().String(), "Last day to fetch.")
	f.StringVar(&c.market, "market", env(envMarketFile, "market.jsonl"), "Market data file (JSONL). Defaults to $"+envMarketFile+".")
	f.StringVar(&c.field, "field", eodhd.DefaultField, "Jsonpath of the price in a daily record.")
	f.StringVar(&c.apiKey, "eodhd-api-key", env(envAPIKey, ""), "EODHD API key. Defaults to $"+envAPIKey+".")
	f.StringVar(&c.baseURL, "eodhd-url", eodhd.DefaultBaseURL, "EODHD API root.")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()

	if c.ticker == "" {
		fmt.Fprintln(os.Stderr, "Error: -ticker is required")
		return subcommands.ExitUsageError
	}
	from, err := date.Parse(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := date.Parse(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}
	name := c.name
	if name == "" {
		name = c.ticker
	}

	m, err := dca.LoadMarket(c.market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market data: %v\n", err)
		return subcommands.ExitFailure
	}

	client := &eodhd.Client{APIKey: c.apiKey, BaseURL: c.baseURL, Field: c.field}
	prices, err := client.Fetch(ctx, c.ticker, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	added := m.Merge(name, prices)

	if err := dca.SaveMarket(c.market, m); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving market data: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.Info().
		Str("ticker", name).
		Int("fetched", prices.Len()).
		Int("added", added).
		Str("file", c.market).
		Msg("prices merged")
	return subcommands.ExitSuccess
}
