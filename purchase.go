package dca

import (
	"math"

	"github.com/etnz/dca/date"
	"github.com/rs/zerolog"
)

// shareTolerance absorbs the floating point noise of solver deltas before flooring them,
// so that 1.9999999999 shares are read as 2.
const shareTolerance = 1e-6

// Purchase is an executed buy order.
type Purchase struct {
	Date            date.Date
	Instrument      string
	Shares          int64
	Price           float64
	ProportionalFee float64
	AbsoluteFee     float64
}

// Cost returns the cash spent by the purchase, fees included.
func (p Purchase) Cost() float64 {
	return p.Price*float64(p.Shares) + p.ProportionalFee + p.AbsoluteFee
}

// Fees returns the fees paid for the purchase.
func (p Purchase) Fees() float64 { return p.ProportionalFee + p.AbsoluteFee }

// Engine turns budgets and share deltas into integer, cash-feasible purchases.
//
// Every attempted purchase records a sample, including the ones that buy nothing.
type Engine struct {
	portfolio Portfolio
	recorder  *Recorder
	journal   []Purchase
	log       zerolog.Logger
}

// NewEngine returns an engine recording samples into r.
func NewEngine(p Portfolio, r *Recorder, log zerolog.Logger) *Engine {
	return &Engine{portfolio: p, recorder: r, log: log}
}

// Journal returns the executed purchases in execution order.
func (e *Engine) Journal() []Purchase { return e.journal }

// ApplyInitial buys as many shares of instrument i as budget allows once fees are paid.
// It does not check the cash on hand nor update the carried cash, so the share count is
// floored exactly.
func (e *Engine) ApplyInitial(st *State, i int, day date.Date, budget float64) {
	in := &e.portfolio[i]
	price := in.mustPrice(day)
	volume := (budget - in.AbsoluteFee) / (1 + in.ProportionalFee)
	shares := int64(math.Floor(volume / price))
	if shares <= 0 {
		e.skip(st, i, day)
		return
	}
	e.buy(st, i, day, price, shares)
	e.recorder.Record(st, day, false)
}

// ApplyRegular buys the integer part of delta shares of instrument i, reduced one share
// at a time until the cost fits the cash on hand. On success the cash left becomes the
// carried cash of the next round.
func (e *Engine) ApplyRegular(st *State, i int, day date.Date, delta float64) {
	in := &e.portfolio[i]
	price := in.mustPrice(day)
	shares := floorShares(delta)
	for shares > 0 && st.Cash < cost(in, price, shares) {
		shares--
	}
	if shares <= 0 {
		e.skip(st, i, day)
		return
	}
	e.buy(st, i, day, price, shares)
	st.Carried = st.Cash
	e.recorder.Record(st, day, false)
}

// cost returns the price of shares, fees included.
func cost(in *Instrument, price float64, shares int64) float64 {
	notional := price * float64(shares)
	return notional + notional*in.ProportionalFee + in.AbsoluteFee
}

func (e *Engine) buy(st *State, i int, day date.Date, price float64, shares int64) {
	in := &e.portfolio[i]
	notional := price * float64(shares)
	p := Purchase{
		Date:            day,
		Instrument:      in.Name,
		Shares:          shares,
		Price:           price,
		ProportionalFee: notional * in.ProportionalFee,
		AbsoluteFee:     in.AbsoluteFee,
	}
	// Debit in one operation, with the same arithmetic as the feasibility check.
	st.Cash -= p.Cost()
	st.Invested += p.Cost()
	st.Fees += p.Fees()
	st.Shares[i] += shares
	e.journal = append(e.journal, p)

	e.log.Debug().
		Stringer("date", day).
		Str("instrument", in.Name).
		Int64("shares", shares).
		Float64("price", price).
		Float64("fees", p.Fees()).
		Float64("cash", st.Cash).
		Msg("purchase")
}

func (e *Engine) skip(st *State, i int, day date.Date) {
	e.log.Debug().
		Stringer("date", day).
		Str("instrument", e.portfolio[i].Name).
		Float64("cash", st.Cash).
		Msg("no purchase")
	e.recorder.Record(st, day, false)
}

// floorShares converts solver share deltas to the integer below them.
// Non finite values buy nothing.
func floorShares(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Floor(v + shareTolerance))
}
