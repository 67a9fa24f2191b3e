package dca

import (
	"slices"

	"github.com/etnz/dca/date"
)

// Market holds daily prices for a set of tickers.
type Market struct {
	prices map[string]*date.History[float64]
}

// NewMarket returns a new empty market data collection.
func NewMarket() *Market {
	return &Market{prices: make(map[string]*date.History[float64])}
}

// Has reports whether the market has prices for ticker.
func (m *Market) Has(ticker string) bool {
	_, ok := m.prices[ticker]
	return ok
}

// Prices returns the price series of ticker, or nil.
func (m *Market) Prices(ticker string) *date.History[float64] { return m.prices[ticker] }

// Append sets the price of ticker on day, overwriting an existing one.
func (m *Market) Append(ticker string, day date.Date, price float64) {
	h, ok := m.prices[ticker]
	if !ok {
		h = new(date.History[float64])
		m.prices[ticker] = h
	}
	h.Append(day, price)
}

// Merge copies every price of h into ticker, and returns the number of prices that were new.
func (m *Market) Merge(ticker string, h *date.History[float64]) (added int) {
	for day, price := range h.Values() {
		if existing := m.Prices(ticker); existing == nil || !existing.Has(day) {
			added++
		}
		m.Append(ticker, day, price)
	}
	return added
}

// Tickers returns the tickers in alphabetical order.
func (m *Market) Tickers() []string {
	tickers := make([]string, 0, len(m.prices))
	for t := range m.prices {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)
	return tickers
}
