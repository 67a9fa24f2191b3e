package dca

import (
	"time"

	"github.com/etnz/dca/date"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// d is a short date constructor for tests.
func d(s string) date.Date { return date.MustParse(s) }

// prices returns a daily history between from and to inclusive, valued by price.
// Weekends are skipped when weekdays is set.
func prices(from, to string, weekdays bool, price func(date.Date) float64) *date.History[float64] {
	h := new(date.History[float64])
	for day := range date.NewRange(d(from), d(to)).Each() {
		if wd := day.Time().Weekday(); weekdays && (wd == time.Saturday || wd == time.Sunday) {
			continue
		}
		h.Append(day, price(day))
	}
	return h
}

// constant returns a price function always returning p.
func constant(p float64) func(date.Date) float64 {
	return func(date.Date) float64 { return p }
}

// historyOf returns a history with the given prices.
func historyOf(points map[string]float64) *date.History[float64] {
	h := new(date.History[float64])
	for s, p := range points {
		h.Append(d(s), p)
	}
	return h
}

// merge returns a history holding every price of hs, later ones overwriting.
func merge(hs ...*date.History[float64]) *date.History[float64] {
	h := new(date.History[float64])
	for _, x := range hs {
		for day, p := range x.Values() {
			h.Append(day, p)
		}
	}
	return h
}
