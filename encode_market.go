package dca

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/dca/date"
)

// attrOn is the reserved property holding the day of a price line.
const attrOn = "on"

// Market data is persisted as JSONL, one line per day, in a way that stays
// human-readable and git-friendly:
//
//	{"on":"2020-01-02","AAA":100.5,"BBB":50}
//
// Tickers are written in alphabetical order and a ticker without a price on that day
// is simply omitted.

// decodeDailyPrices decodes a single line. name and line are for error messages only.
func decodeDailyPrices(m *Market, name string, line int, txt string) error {
	// Start simply ignoring empty lines.
	if strings.TrimSpace(txt) == "" {
		return nil
	}

	jobj := make(map[string]any)
	if err := json.Unmarshal([]byte(txt), &jobj); err != nil {
		return fmt.Errorf("parse error %s:%v: not a correct json: %w", name, line, err)
	}

	jvalue, ok := jobj[attrOn]
	if !ok {
		return fmt.Errorf("parse error %s:%v: missing the property %q with a date", name, line, attrOn)
	}
	jstring, ok := jvalue.(string)
	if !ok {
		return fmt.Errorf("parse error %s:%v: property %q must be of type 'string'", name, line, attrOn)
	}
	on, err := date.Parse(jstring)
	if err != nil {
		return fmt.Errorf("parse error %s:%v: property %q must be a valid date: %w", name, line, attrOn, err)
	}

	// Read all other attributes as (ticker, price) pairs.
	for ticker, price := range jobj {
		if ticker == attrOn {
			continue
		}
		p, ok := price.(float64)
		if !ok {
			return fmt.Errorf("parse error %s:%v: property %q must be of type 'number'", name, line, ticker)
		}
		if p <= 0 {
			return fmt.Errorf("parse error %s:%v: price of %q must be positive, got %v", name, line, ticker, p)
		}
		m.Append(ticker, on, p)
	}
	return nil
}

// DecodeMarket reads JSONL daily prices from r. name is for error messages only.
func DecodeMarket(name string, r io.Reader) (*Market, error) {
	m := NewMarket()
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		if err := decodeDailyPrices(m, name, i, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return m, nil
}

// LoadMarket reads a market data file. A missing file is an empty market.
func LoadMarket(filename string) (*Market, error) {
	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return NewMarket(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load error: cannot open market data file %q: %w", filename, err)
	}
	defer f.Close()
	return DecodeMarket(filename, f)
}

// encodeDailyPrices encodes the prices of day as a single JSON line.
func encodeDailyPrices(w io.Writer, m *Market, tickers []string, day date.Date) error {
	var jw jsonObjectWriter
	jw.Append(attrOn, day.String())
	for _, ticker := range tickers {
		if price, ok := m.Prices(ticker).Get(day); ok {
			jw.Append(ticker, price)
		}
	}
	line, err := jw.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot encode prices on %v: %w", day, err)
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}

// EncodeMarket writes m as JSONL, in chronological order.
func EncodeMarket(w io.Writer, m *Market) error {
	tickers := m.Tickers()
	histories := make([]*date.History[float64], len(tickers))
	for i, t := range tickers {
		histories[i] = m.Prices(t)
	}
	for day := range date.Iterate(histories...) {
		if err := encodeDailyPrices(w, m, tickers, day); err != nil {
			return err
		}
	}
	return nil
}

// SaveMarket writes m to filename, replacing it atomically.
func SaveMarket(filename string, m *Market) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".market-*.jsonl")
	if err != nil {
		return fmt.Errorf("cannot create market data file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := EncodeMarket(bw, m); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write market data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write market data file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("cannot replace market data file %q: %w", filename, err)
	}
	return nil
}
