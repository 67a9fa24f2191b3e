package dca

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/etnz/dca/date"
	"gopkg.in/yaml.v3"
)

// DefaultCurrency is used when a configuration does not name one.
const DefaultCurrency = "EUR"

var (
	// ErrUnknownTicker is matched when a configuration references a ticker without prices.
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrNoAlignment is matched when price series never become jointly defined late enough.
	ErrNoAlignment = errors.New("price series are not jointly defined")
)

// Config holds the parameters of a simulation.
type Config struct {
	Currency            string             `yaml:"currency"`   // display only
	AnnualFee           float64            `yaml:"annual_fee"` // connection fee charged once a year
	Start               date.Date          `yaml:"start"`
	End                 date.Date          `yaml:"end"`
	InitialContribution float64            `yaml:"initial_contribution"`
	MonthlyContribution float64            `yaml:"monthly_contribution"`
	TradeInterval       int                `yaml:"trade_interval"`        // months between two trading rounds
	InstrumentsPerRound int                `yaml:"instruments_per_round"` // purchases per trading round
	Instruments         []InstrumentConfig `yaml:"instruments"`
}

// InstrumentConfig describes a portfolio instrument by ticker.
type InstrumentConfig struct {
	Ticker          string  `yaml:"ticker"`
	Weight          float64 `yaml:"weight"`
	AbsoluteFee     float64 `yaml:"absolute_fee"`
	ProportionalFee float64 `yaml:"proportional_fee"`
}

// DecodeConfig reads a YAML configuration.
func DecodeConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("cannot decode configuration: %w", err)
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	return cfg, nil
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(filename string) (Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Config{}, fmt.Errorf("cannot open configuration %q: %w", filename, err)
	}
	defer f.Close()
	cfg, err := DecodeConfig(f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks that cfg is consistent. The simulation itself assumes it is.
func (c Config) Validate() error {
	var errs []error
	if c.Start.IsZero() || c.End.IsZero() {
		errs = append(errs, errors.New("start and end dates are required"))
	} else if !c.Start.Before(c.End) {
		errs = append(errs, fmt.Errorf("start %v must be before end %v", c.Start, c.End))
	}
	if c.InitialContribution < 0 {
		errs = append(errs, fmt.Errorf("initial contribution %v must not be negative", c.InitialContribution))
	}
	if c.MonthlyContribution <= 0 {
		errs = append(errs, fmt.Errorf("monthly contribution %v must be positive", c.MonthlyContribution))
	}
	if c.AnnualFee < 0 {
		errs = append(errs, fmt.Errorf("annual fee %v must not be negative", c.AnnualFee))
	}
	if c.TradeInterval < 1 {
		errs = append(errs, fmt.Errorf("trade interval %d must be at least one month", c.TradeInterval))
	}
	n := len(c.Instruments)
	if n == 0 {
		errs = append(errs, errors.New("at least one instrument is required"))
	}
	if c.InstrumentsPerRound < 1 || c.InstrumentsPerRound > n {
		errs = append(errs, fmt.Errorf("instruments per round %d must be in [1, %d]", c.InstrumentsPerRound, n))
	}

	seen := make(map[string]bool)
	var total float64
	for _, in := range c.Instruments {
		if in.Ticker == "" {
			errs = append(errs, errors.New("instrument ticker is required"))
		}
		if seen[in.Ticker] {
			errs = append(errs, fmt.Errorf("instrument %q is defined twice", in.Ticker))
		}
		seen[in.Ticker] = true
		if in.Weight < 0 || in.Weight > 1 {
			errs = append(errs, fmt.Errorf("instrument %q weight %v must be in [0,1]", in.Ticker, in.Weight))
		}
		if in.AbsoluteFee < 0 || in.ProportionalFee < 0 {
			errs = append(errs, fmt.Errorf("instrument %q fees must not be negative", in.Ticker))
		}
		total += in.Weight
	}
	if n > 0 && math.Abs(total-1) > 1e-6 {
		errs = append(errs, fmt.Errorf("instrument weights sum to %v, want 1", total))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Portfolio binds the configured instruments to their prices in m.
func (c Config) Portfolio(m *Market) (Portfolio, error) {
	p := make(Portfolio, 0, len(c.Instruments))
	for _, in := range c.Instruments {
		prices := m.Prices(in.Ticker)
		if prices == nil {
			return nil, fmt.Errorf("%w %q: no prices in market data", ErrUnknownTicker, in.Ticker)
		}
		p = append(p, Instrument{
			Name:            in.Ticker,
			Prices:          prices,
			Weight:          in.Weight,
			AbsoluteFee:     in.AbsoluteFee,
			ProportionalFee: in.ProportionalFee,
		})
	}
	return p, nil
}

// CheckAlignment verifies that the portfolio can be simulated up to end without an
// endless trading day search, that is a trading day exists on or after end.
func CheckAlignment(p Portfolio, end date.Date) error {
	last, ok := NewCalendar(p).LastTradingDay()
	if !ok {
		return fmt.Errorf("%w: no day has a price for all of %v", ErrNoAlignment, p)
	}
	if last.Before(end) {
		return fmt.Errorf("%w: last common day %v is before the end %v", ErrNoAlignment, last, end)
	}
	return nil
}
