// Package eodhd fetches daily prices from the EODHD end-of-day API.
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/dca/date"
)

const (
	// DefaultBaseURL is the EODHD API root.
	DefaultBaseURL = "https://eodhd.com/api"
	// DefaultField selects the price of a daily record, adjusted for splits and dividends.
	DefaultField = "$.adjusted_close"
	// DemoKey is accepted by EODHD for a few tickers only.
	DemoKey = "demo"
)

// ErrNoAPIKey is returned when fetching without an API key.
var ErrNoAPIKey = errors.New("eodhd: missing API key")

// Client queries the EODHD end-of-day endpoint.
type Client struct {
	APIKey  string
	BaseURL string       // defaults to DefaultBaseURL
	Field   string       // jsonpath of the price in a daily record, defaults to DefaultField
	HTTP    *http.Client // defaults to a client caching responses on disk for the day
}

// Fetch returns the daily prices of ticker between from and to, boundaries included.
// Records the server returns outside of that range are ignored.
//
// The EODHD ticker format is typically "SYMBOL.EXCHANGECODE".
func (c *Client) Fetch(ctx context.Context, ticker string, from, to date.Date) (*date.History[float64], error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=demo&fmt=json
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	},
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	field := c.Field
	if field == "" {
		field = DefaultField
	}
	client := c.HTTP
	if client == nil {
		client = NewCachingClient("")
	}

	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s", base, url.PathEscape(ticker), url.QueryEscape(c.APIKey), from, to)
	var content []map[string]any
	if err := jwget(ctx, client, addr, &content); err != nil {
		return nil, fmt.Errorf("cannot fetch %s prices: %w", ticker, err)
	}

	period := date.NewRange(from, to)
	h := new(date.History[float64])
	for i, record := range content {
		jday, ok := record["date"].(string)
		if !ok {
			return nil, fmt.Errorf("%s record %d: missing date", ticker, i)
		}
		day, err := date.Parse(jday)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", ticker, i, err)
		}
		if !period.Contains(day) {
			continue
		}
		price, err := extract(record, field)
		if err != nil {
			return nil, fmt.Errorf("%s record %d on %v: %w", ticker, i, day, err)
		}
		h.Append(day, price)
	}
	return h, nil
}

// extract returns the number selected by path in record.
func extract(record map[string]any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, record)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("%q is not a number: %v", path, jval)
	}
	if val <= 0 {
		return 0, fmt.Errorf("%q is not a positive price: %v", path, val)
	}
	return val, nil
}

// jwget performs an HTTP GET request to the given address and unmarshals the
// JSON response body into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
