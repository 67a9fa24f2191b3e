package dca

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchasePortfolio() Portfolio {
	return Portfolio{
		{Name: "A", Weight: 0.5, Prices: prices("2020-01-01", "2020-01-31", false, constant(100)), AbsoluteFee: 1, ProportionalFee: 0.01},
		{Name: "B", Weight: 0.5, Prices: prices("2020-01-01", "2020-01-31", false, constant(50))},
	}
}

func TestEngine_ApplyInitial(t *testing.T) {
	p := purchasePortfolio()
	r := NewRecorder(p)
	e := NewEngine(p, r, zerolog.Nop())
	st := NewState(2)
	st.Cash = 1000

	e.ApplyInitial(st, 0, d("2020-01-02"), 500)

	// floor((500-1)/1.01/100) = 4 shares, 400 + 4 + 1
	assert.Equal(t, []int64{4, 0}, st.Shares)
	assert.InDelta(t, 595, st.Cash, 1e-9)
	assert.InDelta(t, 405, st.Invested, 1e-9)
	assert.InDelta(t, 5, st.Fees, 1e-9)
	assert.Zero(t, st.Carried)

	require.Len(t, e.Journal(), 1)
	assert.Equal(t, Purchase{Date: d("2020-01-02"), Instrument: "A", Shares: 4, Price: 100, ProportionalFee: 4, AbsoluteFee: 1}, e.Journal()[0])

	samples := r.Samples()
	require.Len(t, samples, 1)
	assert.InDelta(t, 400, samples[0].Equity, 1e-9)
	assert.Equal(t, []float64{1, 0}, samples[0].Weights)
}

func TestEngine_ApplyInitialTooSmall(t *testing.T) {
	p := purchasePortfolio()
	r := NewRecorder(p)
	e := NewEngine(p, r, zerolog.Nop())
	st := NewState(2)
	st.Cash = 100

	e.ApplyInitial(st, 0, d("2020-01-02"), 100)

	assert.Equal(t, []int64{0, 0}, st.Shares)
	assert.Equal(t, 100.0, st.Cash)
	assert.Empty(t, e.Journal())
	// A no-op purchase is still sampled.
	assert.Len(t, r.Samples(), 1)
}

func TestEngine_ApplyInitialJustBelowOneShare(t *testing.T) {
	p := purchasePortfolio()
	r := NewRecorder(p)
	e := NewEngine(p, r, zerolog.Nop())
	st := NewState(2)
	st.Cash = 49.99996

	// 0.9999992 share of B at 50.
	e.ApplyInitial(st, 1, d("2020-01-02"), 49.99996)

	assert.Equal(t, []int64{0, 0}, st.Shares)
	assert.Equal(t, 49.99996, st.Cash)
	assert.Zero(t, st.Invested)
	assert.Empty(t, e.Journal())
}

func TestEngine_ApplyInitialNeverOverdraws(t *testing.T) {
	p := Portfolio{{Name: "A", Weight: 1, Prices: prices("2020-01-01", "2020-01-31", false, constant(1000))}}
	e := NewEngine(p, NewRecorder(p), zerolog.Nop())
	st := NewState(1)
	st.Cash = 999.9995

	e.ApplyInitial(st, 0, d("2020-01-02"), 999.9995)

	assert.Equal(t, int64(0), st.Shares[0])
	assert.Equal(t, 999.9995, st.Cash)
	assert.GreaterOrEqual(t, st.Cash, 0.0)
}

func TestEngine_ApplyRegular(t *testing.T) {
	tests := []struct {
		name        string
		cash        float64
		delta       float64
		wantShares  int64
		wantCash    float64
		wantCarried float64
	}{
		{name: "exact", cash: 200, delta: 4, wantShares: 4, wantCash: 0, wantCarried: 0},
		{name: "solver noise", cash: 200, delta: 3.9999999, wantShares: 4, wantCash: 0, wantCarried: 0},
		{name: "clamped to cash", cash: 120, delta: 3.9999999, wantShares: 2, wantCash: 20, wantCarried: 20},
		{name: "fractional", cash: 200, delta: 1.7, wantShares: 1, wantCash: 150, wantCarried: 150},
		{name: "negative", cash: 200, delta: -3, wantShares: 0, wantCash: 200, wantCarried: -1},
		{name: "no cash", cash: 40, delta: 3, wantShares: 0, wantCash: 40, wantCarried: -1},
		{name: "not finite", cash: 200, delta: math.NaN(), wantShares: 0, wantCash: 200, wantCarried: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := purchasePortfolio()
			r := NewRecorder(p)
			e := NewEngine(p, r, zerolog.Nop())
			st := NewState(2)
			st.Cash = tt.cash
			st.Carried = -1 // marks an untouched carried cash

			e.ApplyRegular(st, 1, d("2020-01-02"), tt.delta)

			assert.Equal(t, tt.wantShares, st.Shares[1])
			assert.InDelta(t, tt.wantCash, st.Cash, 1e-9)
			assert.InDelta(t, tt.wantCarried, st.Carried, 1e-9)
			assert.GreaterOrEqual(t, st.Cash, 0.0)
			assert.Len(t, r.Samples(), 1)
			if tt.wantShares > 0 {
				require.Len(t, e.Journal(), 1)
				assert.InDelta(t, tt.cash-tt.wantCash, e.Journal()[0].Cost(), 1e-9)
			} else {
				assert.Empty(t, e.Journal())
			}
		})
	}
}

func TestEngine_ApplyRegularWithFees(t *testing.T) {
	p := purchasePortfolio()
	e := NewEngine(p, NewRecorder(p), zerolog.Nop())
	st := NewState(2)
	st.Cash = 303 // 3 shares cost 300+3+1

	e.ApplyRegular(st, 0, d("2020-01-02"), 3)
	assert.Equal(t, int64(2), st.Shares[0])
	assert.InDelta(t, 100, st.Cash, 1e-9)
	assert.InDelta(t, 3, st.Fees, 1e-9)

	st.Cash = 304
	e.ApplyRegular(st, 0, d("2020-01-03"), 3)
	assert.Equal(t, int64(5), st.Shares[0])
	assert.InDelta(t, 0, st.Cash, 1e-9)
}

func TestFloorShares(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{2, 2},
		{1.9999999999, 2},
		{1.99, 1},
		{0.5, 0},
		{-0.3, -1},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorShares(tt.in), "floorShares(%v)", tt.in)
	}
}
