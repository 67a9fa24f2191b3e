package dca

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/etnz/dca/date"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNotConverged is matched by errors returned when the solver cannot produce finite share deltas.
var ErrNotConverged = errors.New("solver did not converge")

// ConvergenceError describes a failed weight solve.
type ConvergenceError struct {
	Day         date.Date
	Instruments []string
	Reason      string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v: cannot determine shares preserving weights of %s: %s", e.Day, strings.Join(e.Instruments, ","), e.Reason)
}

func (e *ConvergenceError) Unwrap() error { return ErrNotConverged }

const (
	defaultMaxIterations = 200
	defaultTolerance     = 1e-10
	maxDamping           = 1e16
	minDamping           = 1e-12
)

// Solver computes the share deltas that bring portfolio weights to their targets.
//
// The zero value is ready to use.
type Solver struct {
	MaxIterations int     // Levenberg-Marquardt iterations, defaults to 200
	Tolerance     float64 // residual and step tolerance, defaults to 1e-10
}

// Solve returns, for each instrument, the real (possibly negative) number of shares to
// buy on day so that post-purchase weights match the targets, while the total cost,
// fees included, equals budget+carried.
//
// When nothing is held yet, weight ratios are undefined and each delta is computed in
// closed form from the instrument share of budget instead.
//
// Deltas are advisory: purchases floor them and clamp them to available cash.
// On failure the error matches ErrNotConverged.
func (s *Solver) Solve(p Portfolio, st *State, day date.Date, budget, carried float64) ([]float64, error) {
	if st.holdsNothing() {
		return bootstrapDeltas(p, day, budget), nil
	}

	n := len(p)
	prices := make([]float64, n)
	for i := range p {
		prices[i] = p[i].mustPrice(day)
	}
	held := make([]float64, n)
	for i, q := range st.Shares {
		held[i] = float64(q)
	}

	// n weight equations plus one budget equation, in n unknowns.
	residuals := func(y, x []float64) {
		var total, spent float64
		for i := range x {
			total += (held[i] + x[i]) * prices[i]
		}
		for i := range x {
			y[i] = (held[i]+x[i])*prices[i]/total - p[i].Weight
			spent += x[i]*prices[i]*(1+p[i].ProportionalFee) + p[i].AbsoluteFee
		}
		y[n] = spent - (budget + carried)
	}

	x, reason := s.leastSquares(residuals, n+1, n)
	if reason == "" && !allFinite(x) {
		reason = "non-finite solution"
	}
	if reason != "" {
		return nil, &ConvergenceError{Day: day, Instruments: p.Names(), Reason: reason}
	}
	return x, nil
}

// bootstrapDeltas splits budget according to target weights, net of fees.
func bootstrapDeltas(p Portfolio, day date.Date, budget float64) []float64 {
	deltas := make([]float64, len(p))
	for i := range p {
		volume := (budget*p[i].Weight - p[i].AbsoluteFee) / (1 + p[i].ProportionalFee)
		deltas[i] = math.Floor(volume / p[i].mustPrice(day))
	}
	return deltas
}

// leastSquares minimizes |f(x)|² from x=0 with a Levenberg-Marquardt method using a
// central finite difference Jacobian and Marquardt's diagonal scaling.
// It returns a non empty reason when no finite solution could be reached.
func (s *Solver) leastSquares(f func(y, x []float64), m, n int) (x []float64, reason string) {
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}

	x = make([]float64, n)
	r := make([]float64, m)
	f(r, x)
	if !allFinite(r) {
		return x, "non-finite residuals at origin"
	}
	cost := floats.Dot(r, r)

	jac := mat.NewDense(m, n, nil)
	settings := &fd.JacobianSettings{Formula: fd.Central}
	trial := make([]float64, n)
	rt := make([]float64, m)
	lambda := 1e-3

	for iter := 0; iter < maxIter; iter++ {
		if cost <= tol*tol {
			return x, ""
		}
		fd.Jacobian(jac, f, x, settings)
		if !allFinite(jac.RawMatrix().Data) {
			return x, "non-finite jacobian"
		}
		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var g mat.VecDense
		g.MulVec(jac.T(), mat.NewVecDense(m, r))
		if mat.Norm(&g, math.Inf(1)) <= tol*tol {
			// stationary point.
			return x, ""
		}

		for {
			a := mat.DenseCopyOf(&jtj)
			for i := 0; i < n; i++ {
				d := math.Max(jtj.At(i, i), minDamping)
				a.Set(i, i, jtj.At(i, i)+lambda*d)
			}
			var step mat.VecDense
			err := step.SolveVec(a, &g)
			if err == nil {
				for i := range trial {
					trial[i] = x[i] - step.AtVec(i)
				}
				f(rt, trial)
				if c := floats.Dot(rt, rt); allFinite(rt) && c < cost {
					small := mat.Norm(&step, 2) <= tol*(floats.Norm(x, 2)+tol)
					copy(x, trial)
					copy(r, rt)
					cost = c
					lambda = math.Max(lambda/10, minDamping)
					if small {
						return x, ""
					}
					break
				}
			}
			lambda *= 10
			if lambda > maxDamping {
				// No descent direction left, x is as good as it gets.
				return x, ""
			}
		}
	}
	return x, ""
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
