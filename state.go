package dca

import "github.com/etnz/dca/date"

// State is the mutable record a simulation run folds over its calendar.
//
// It is owned by a single simulation and passed explicitly to every component.
type State struct {
	Cash        float64 // cash on hand
	Shares      []int64 // integer shares held, per instrument in portfolio order
	Contributed float64 // cumulative cash contributed
	Invested    float64 // cumulative cost of purchases, fees included
	Fees        float64 // cumulative fees (trading and annual connection fees)
	Carried     float64 // investable cash left after the last purchase round
}

// NewState returns an empty state for a portfolio of n instruments.
func NewState(n int) *State {
	return &State{Shares: make([]int64, n)}
}

// holdsNothing reports whether no instrument has any share.
func (s *State) holdsNothing() bool {
	for _, n := range s.Shares {
		if n > 0 {
			return false
		}
	}
	return true
}

// Valuation returns the mark-to-market equity of the holdings and the weight of each
// instrument. Weights are all zero when equity is not positive.
//
// Prices are the ones on day, or the latest before day when asOf is set.
func (s *State) Valuation(p Portfolio, day date.Date, asOf bool) (equity float64, weights []float64) {
	values := make([]float64, len(p))
	for i := range p {
		var price float64
		if asOf {
			price, _ = p[i].Prices.ValueAsOf(day)
		} else {
			price = p[i].mustPrice(day)
		}
		values[i] = float64(s.Shares[i]) * price
		equity += values[i]
	}
	weights = make([]float64, len(p))
	if equity > 0 {
		for i, v := range values {
			weights[i] = v / equity
		}
	}
	return equity, weights
}
