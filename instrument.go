package dca

import (
	"strings"

	"github.com/etnz/dca/date"
)

// Instrument is a tradable security of the portfolio.
//
// Instruments are read-only once a simulation is constructed.
type Instrument struct {
	Name            string                 // display name, usually the ticker
	Prices          *date.History[float64] // sparse: a missing day means no trading, not a zero price
	Weight          float64                // target fraction of the portfolio value in [0,1]
	AbsoluteFee     float64                // flat charge per purchase
	ProportionalFee float64                // fraction of the traded notional
}

// Price returns the instrument price on day, if any.
func (in *Instrument) Price(day date.Date) (float64, bool) {
	if in.Prices == nil {
		return 0, false
	}
	return in.Prices.Get(day)
}

// mustPrice returns the price on a day known to be a trading day.
func (in *Instrument) mustPrice(day date.Date) float64 {
	p, ok := in.Price(day)
	if !ok {
		panic("no price for " + in.Name + " on " + day.String())
	}
	return p
}

// Portfolio is the ordered collection of instruments of a simulation.
//
// Weights are assumed to sum to 1, the engine does not check it (see Config.Validate).
type Portfolio []Instrument

// Names returns the instrument names in portfolio order.
func (p Portfolio) Names() []string {
	names := make([]string, len(p))
	for i := range p {
		names[i] = p[i].Name
	}
	return names
}

func (p Portfolio) String() string { return strings.Join(p.Names(), ",") }
