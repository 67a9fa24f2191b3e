package dca

import (
	"slices"

	"github.com/etnz/dca/date"
)

// Sample is the state of the portfolio right after a trading event.
type Sample struct {
	Date      date.Date
	Equity    float64   // mark-to-market value of the holdings
	Invested  float64   // cumulative cost of purchases, fees included
	Remaining float64   // investable cash carried after the last purchase round
	Return    Percent   // (Equity-Invested)/Invested
	FeeRatio  Percent   // Fees/Invested
	Weights   []float64 // per instrument, in portfolio order
	Final     bool      // closing sample, its weights are zero
}

// Recorder accumulates one Sample per distinct trading day.
type Recorder struct {
	portfolio Portfolio
	samples   []Sample
}

// NewRecorder returns an empty recorder for the portfolio.
func NewRecorder(p Portfolio) *Recorder { return &Recorder{portfolio: p} }

// Record samples st on day.
//
// If day is the date of the last recorded sample, that sample is overwritten with the
// new state, otherwise a new sample is appended. Only the last sample is compared.
//
// A final sample values holdings at the latest price on or before day. When appended,
// its weights are all zero, marking the end of the simulation.
func (r *Recorder) Record(st *State, day date.Date, final bool) {
	equity, weights := st.Valuation(r.portfolio, day, final)
	s := Sample{
		Date:      day,
		Equity:    equity,
		Invested:  st.Invested,
		Remaining: st.Carried,
		Return:    ratio(equity-st.Invested, st.Invested),
		FeeRatio:  ratio(st.Fees, st.Invested),
		Weights:   weights,
	}
	if last := len(r.samples) - 1; last >= 0 && r.samples[last].Date == day {
		r.samples[last] = s
		return
	}
	if final {
		s.Weights = make([]float64, len(r.portfolio))
		s.Final = true
	}
	r.samples = append(r.samples, s)
}

// Samples returns the recorded time series in chronological order.
func (r *Recorder) Samples() []Sample { return slices.Clone(r.samples) }

// Last returns the latest sample, if any.
func (r *Recorder) Last() (Sample, bool) {
	if len(r.samples) == 0 {
		return Sample{}, false
	}
	return r.samples[len(r.samples)-1], true
}
