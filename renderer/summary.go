package renderer

import (
	"github.com/etnz/dca"
)

// Summary is the view of a simulation result rendered by SummaryMarkdown.
type Summary struct {
	Start, End       string
	Days             int
	Currency         string
	Contributed      string
	Invested         string
	Fees             string
	Cash             string
	Equity           string
	Gain             string
	Return           string
	AnnualizedReturn string
	Holdings         []Holding
}

// Holding is the final position in one instrument.
type Holding struct {
	Instrument string
	Shares     int64
	Purchases  int
	Spent      string
	Fees       string
}

// NewSummary builds the summary view of r.
func NewSummary(r *dca.Result) *Summary {
	s := r.Summary
	m := func(v float64) dca.Money { return dca.M(v, r.Currency) }
	view := &Summary{
		Start:            s.Start.String(),
		End:              s.End.String(),
		Days:             s.Days,
		Currency:         r.Currency,
		Contributed:      m(s.Contributed).String(),
		Invested:         m(s.Invested).String(),
		Fees:             m(s.Fees).String(),
		Cash:             m(s.Cash).String(),
		Equity:           m(s.Equity).String(),
		Gain:             m(s.Equity).Sub(m(s.Invested)).SignedString(),
		Return:           s.Return.SignedString(),
		AnnualizedReturn: s.AnnualizedReturn.SignedString(),
	}

	spent := make(map[string]dca.Money)
	fees := make(map[string]dca.Money)
	count := make(map[string]int)
	for _, p := range r.Purchases {
		spent[p.Instrument] = spent[p.Instrument].Add(m(p.Cost()))
		fees[p.Instrument] = fees[p.Instrument].Add(m(p.Fees()))
		count[p.Instrument]++
	}
	for i, name := range r.Instruments {
		view.Holdings = append(view.Holdings, Holding{
			Instrument: name,
			Shares:     s.Shares[i],
			Purchases:  count[name],
			Spent:      m(0).Add(spent[name]).String(),
			Fees:       m(0).Add(fees[name]).String(),
		})
	}
	return view
}

// SummaryMarkdown renders the summary of r to a markdown string.
func SummaryMarkdown(r *dca.Result) string {
	partials := map[string]string{
		"summary_title":    "summary_title.md",
		"summary_figures":  "summary_figures.md",
		"summary_holdings": "summary_holdings.md",
	}
	return renderTemplate("summary", "summary.md", partials, NewSummary(r))
}
