package dca

import (
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/dca/date"
	"github.com/rs/zerolog"
)

// Phase is the state of a Simulation.
type Phase int

const (
	Bootstrapping Phase = iota
	Recurring
	Finalized
)

func (p Phase) String() string {
	switch p {
	case Bootstrapping:
		return "bootstrapping"
	case Recurring:
		return "recurring"
	case Finalized:
		return "finalized"
	default:
		panic(fmt.Sprintf("unknown phase %d", int(p)))
	}
}

// monthsPerYear is the number of processed months between two annual fees.
const monthsPerYear = 12

// Simulation drives a single deterministic run over a portfolio.
//
// It is not safe for concurrent use, and Run can be called only once.
type Simulation struct {
	portfolio Portfolio
	cfg       Config
	calendar  *Calendar
	rotation  *Rotation
	solver    *Solver
	recorder  *Recorder
	engine    *Engine
	state     *State
	phase     Phase
	log       zerolog.Logger
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger of the simulation, it defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithSolver replaces the default weight solver.
func WithSolver(solver *Solver) Option {
	return func(s *Simulation) { s.solver = solver }
}

// NewSimulation prepares a run of cfg over portfolio p.
//
// cfg is assumed valid (see Config.Validate) and the price series must become jointly
// defined on or after cfg.End (see CheckAlignment), otherwise Run never returns.
func NewSimulation(p Portfolio, cfg Config, opts ...Option) *Simulation {
	s := &Simulation{
		portfolio: p,
		cfg:       cfg,
		calendar:  NewCalendar(p),
		rotation:  NewRotation(p),
		solver:    new(Solver),
		recorder:  NewRecorder(p),
		state:     NewState(len(p)),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = NewEngine(p, s.recorder, s.log)
	return s
}

// Phase returns the current phase of the simulation.
func (s *Simulation) Phase() Phase { return s.phase }

// Run executes the simulation to completion and returns its result.
func (s *Simulation) Run() *Result {
	if s.phase != Bootstrapping {
		panic("simulation already run")
	}
	s.bootstrap()
	s.transition(Recurring)
	s.recur()
	s.transition(Finalized)
	return s.finalize()
}

func (s *Simulation) transition(p Phase) {
	s.log.Debug().Stringer("from", s.phase).Stringer("to", p).Msg("phase")
	s.phase = p
}

// bootstrap invests the initial contribution across all instruments, once each, in
// rotation order, on the first trading day.
func (s *Simulation) bootstrap() {
	st := s.state
	st.Cash = s.cfg.InitialContribution
	st.Contributed = s.cfg.InitialContribution
	day := s.calendar.FirstValidDay(s.cfg.Start)
	for range s.portfolio {
		i := s.rotation.Next()
		budget := s.cfg.InitialContribution*s.portfolio[i].Weight + st.Carried
		s.engine.ApplyInitial(st, i, day, budget)
	}
}

// recur processes monthly contributions, annual fees and periodic trading rounds.
func (s *Simulation) recur() {
	st := s.state
	n := len(s.portfolio)
	perRound := s.cfg.InstrumentsPerRound
	first := s.rotation.LowestWeightIndex()
	var deltas []float64
	monthsWithoutTrade := 0
	months := 0

	for day := range s.calendar.MonthlyTradingDays(s.cfg.Start, s.cfg.End) {
		st.Contributed += s.cfg.MonthlyContribution
		st.Cash += s.cfg.MonthlyContribution
		if months%monthsPerYear == 0 {
			st.Cash -= s.cfg.AnnualFee
			st.Fees += s.cfg.AnnualFee
			s.log.Debug().Stringer("date", day).Float64("fee", s.cfg.AnnualFee).Msg("annual fee")
		}
		months++

		monthsWithoutTrade++
		if monthsWithoutTrade < s.cfg.TradeInterval {
			continue
		}
		for range perRound {
			i := s.rotation.Next()
			if i == first {
				budget := s.cfg.MonthlyContribution * float64(s.cfg.TradeInterval) * float64(n) / float64(perRound)
				deltas = s.solve(day, budget)
			}
			var delta float64
			if deltas != nil {
				delta = deltas[i]
			}
			s.engine.ApplyRegular(st, i, day, delta)
		}
		monthsWithoutTrade = 0
	}
}

// solve returns the share deltas of a new rotation round, or zeros when the solver fails.
func (s *Simulation) solve(day date.Date, budget float64) []float64 {
	deltas, err := s.solver.Solve(s.portfolio, s.state, day, budget, s.state.Carried)
	if err != nil {
		var cerr *ConvergenceError
		if errors.As(err, &cerr) {
			s.log.Warn().
				Stringer("date", cerr.Day).
				Strs("instruments", cerr.Instruments).
				Str("reason", cerr.Reason).
				Msg("solver could not determine shares preserving weights")
		} else {
			s.log.Warn().Err(err).Stringer("date", day).Msg("solver failed")
		}
		return make([]float64, len(s.portfolio))
	}
	return deltas
}

// finalize records the closing sample and computes the summary.
func (s *Simulation) finalize() *Result {
	st := s.state
	s.recorder.Record(st, s.cfg.End, true)
	last, _ := s.recorder.Last()

	days := date.NewRange(s.cfg.Start, s.cfg.End).Days()
	var annualized Percent
	if days > 0 {
		annualized = Percent(float64(last.Return) / (float64(days) / 365))
	}
	return &Result{
		Currency:    s.cfg.Currency,
		Instruments: s.portfolio.Names(),
		Samples:     s.recorder.Samples(),
		Purchases:   slices.Clone(s.engine.Journal()),
		Summary: Summary{
			Start:            s.cfg.Start,
			End:              s.cfg.End,
			Days:             days,
			Contributed:      st.Contributed,
			Invested:         st.Invested,
			Fees:             st.Fees,
			Equity:           last.Equity,
			Cash:             st.Cash,
			Return:           last.Return,
			AnnualizedReturn: annualized,
			Shares:           slices.Clone(st.Shares),
		},
	}
}

// Result is the outcome of a simulation run.
type Result struct {
	Currency    string     // display only
	Instruments []string   // names, in portfolio order
	Samples     []Sample   // one per trading day with a purchase attempt, plus the closing one
	Purchases   []Purchase // executed purchases, in order
	Summary     Summary
}

// Summary holds the scalar statistics of a run.
type Summary struct {
	Start, End       date.Date
	Days             int
	Contributed      float64 // cash contributed, initial and monthly
	Invested         float64 // purchases cost, fees included
	Fees             float64 // trading and annual fees
	Equity           float64 // holdings value at the end date
	Cash             float64 // cash on hand at the end date
	Return           Percent // final return on investment
	AnnualizedReturn Percent // Return / (Days/365)
	Shares           []int64 // final holdings, in portfolio order
}
