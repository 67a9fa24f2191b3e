package dca

import (
	"slices"
	"testing"

	"github.com/etnz/dca/date"
	"github.com/stretchr/testify/assert"
)

func portfolioOf(histories ...*date.History[float64]) Portfolio {
	p := make(Portfolio, len(histories))
	for i, h := range histories {
		p[i] = Instrument{Name: string(rune('A' + i)), Prices: h, Weight: 1 / float64(len(histories))}
	}
	return p
}

func TestCalendar_FirstValidDay(t *testing.T) {
	a := historyOf(map[string]float64{"2020-01-02": 1, "2020-01-03": 1, "2020-01-06": 1})
	b := historyOf(map[string]float64{"2020-01-03": 2, "2020-01-06": 2})
	c := NewCalendar(portfolioOf(a, b))

	assert.Equal(t, d("2020-01-03"), c.FirstValidDay(d("2020-01-01")))
	assert.Equal(t, d("2020-01-03"), c.FirstValidDay(d("2020-01-03")))
	assert.Equal(t, d("2020-01-06"), c.FirstValidDay(d("2020-01-04")))

	assert.True(t, c.IsDefined(0, d("2020-01-02")))
	assert.False(t, c.IsDefined(1, d("2020-01-02")))
}

func TestCalendar_LastTradingDay(t *testing.T) {
	a := historyOf(map[string]float64{"2020-01-02": 1, "2020-01-03": 1, "2020-01-06": 1})
	b := historyOf(map[string]float64{"2020-01-02": 2, "2020-01-03": 2, "2020-01-07": 2})

	last, ok := NewCalendar(portfolioOf(a, b)).LastTradingDay()
	assert.True(t, ok)
	assert.Equal(t, d("2020-01-03"), last)

	c := historyOf(map[string]float64{"2021-01-01": 2})
	_, ok = NewCalendar(portfolioOf(a, c)).LastTradingDay()
	assert.False(t, ok)
}

func TestCalendar_MonthlyTradingDays(t *testing.T) {
	tests := []struct {
		name       string
		histories  []*date.History[float64]
		start, end string
		want       []date.Date
	}{
		{
			name:      "weekdays",
			histories: []*date.History[float64]{prices("2020-01-01", "2020-06-30", true, constant(1))},
			start:     "2020-01-01",
			end:       "2020-04-01",
			want:      []date.Date{d("2020-02-03"), d("2020-03-02"), d("2020-04-01")},
		},
		{
			name: "first day needs every instrument",
			histories: []*date.History[float64]{
				prices("2020-01-20", "2020-06-30", false, constant(1)),
				prices("2020-01-01", "2020-06-30", false, constant(1)),
			},
			start: "2020-01-01",
			end:   "2020-03-31",
			want:  []date.Date{d("2020-02-01"), d("2020-03-01")},
		},
		{
			name: "gap spanning months yields one day",
			histories: []*date.History[float64]{merge(
				historyOf(map[string]float64{"2020-01-02": 1}),
				prices("2020-04-06", "2020-06-30", false, constant(1)),
			)},
			start: "2020-01-01",
			end:   "2020-05-31",
			want:  []date.Date{d("2020-04-06"), d("2020-05-01")},
		},
		{
			name: "never after end",
			histories: []*date.History[float64]{merge(
				prices("2020-01-01", "2020-03-10", false, constant(1)),
				prices("2020-03-20", "2020-04-30", false, constant(1)),
			)},
			start: "2020-01-01",
			end:   "2020-03-15",
			want:  []date.Date{d("2020-02-01"), d("2020-03-01")},
		},
		{
			name: "same month of another year is a new month",
			histories: []*date.History[float64]{merge(
				historyOf(map[string]float64{"2020-01-15": 1}),
				prices("2021-01-10", "2021-03-31", false, constant(1)),
			)},
			start: "2020-01-01",
			end:   "2021-01-31",
			want:  []date.Date{d("2021-01-10")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(NewCalendar(portfolioOf(tt.histories...)).MonthlyTradingDays(d(tt.start), d(tt.end)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendar_MonthlyTradingDaysStops(t *testing.T) {
	c := NewCalendar(portfolioOf(prices("2020-01-01", "2020-12-31", false, constant(1))))
	var got []date.Date
	for day := range c.MonthlyTradingDays(d("2020-01-01"), d("2020-12-31")) {
		got = append(got, day)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []date.Date{d("2020-02-01"), d("2020-03-01")}, got)
}
