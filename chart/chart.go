// Package chart draws the time series of a simulation as PNG line charts.
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/dca"
	"github.com/vicanso/go-charts/v2"
)

// ErrNoData is returned when a result has no sample to draw.
var ErrNoData = errors.New("no sample to draw")

const (
	width  = 1000
	height = 600
)

// Equity draws the holdings value against the cumulative investment.
func Equity(r *dca.Result) ([]byte, error) {
	equity := make([]float64, len(r.Samples))
	invested := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		equity[i] = s.Equity
		invested[i] = s.Invested
	}
	return line(r, "Equity ("+r.Currency+")", []string{"Equity", "Invested"}, [][]float64{equity, invested}, false)
}

// Return draws the return on investment, in percent.
func Return(r *dca.Result) ([]byte, error) {
	values := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		values[i] = float64(s.Return)
	}
	return line(r, "Return (%)", []string{"Return"}, [][]float64{values}, false)
}

// Weights draws the weight of every instrument, in percent. The closing sample has no
// weights and is left out.
func Weights(r *dca.Result) ([]byte, error) {
	series := make([][]float64, len(r.Instruments))
	for i := range series {
		series[i] = make([]float64, 0, len(r.Samples))
	}
	for _, s := range r.Samples {
		if s.Final {
			continue
		}
		for i, w := range s.Weights {
			series[i] = append(series[i], w*100)
		}
	}
	return line(r, "Weights (%)", r.Instruments, series, true)
}

// Cash draws the investable cash carried after each purchase round.
func Cash(r *dca.Result) ([]byte, error) {
	values := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		values[i] = s.Remaining
	}
	return line(r, "Remaining Cash ("+r.Currency+")", []string{"Remaining"}, [][]float64{values}, false)
}

// FeeRatio draws the cumulative fees as a percentage of the investment.
func FeeRatio(r *dca.Result) ([]byte, error) {
	values := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		values[i] = float64(s.FeeRatio)
	}
	return line(r, "Fees (%)", []string{"Fees"}, [][]float64{values}, false)
}

// line renders series over the sample dates.
func line(r *dca.Result, title string, names []string, series [][]float64, skipFinal bool) ([]byte, error) {
	x := make([]string, 0, len(r.Samples))
	for _, s := range r.Samples {
		if skipFinal && s.Final {
			continue
		}
		x = append(x, s.Date.String())
	}
	if len(x) == 0 {
		return nil, ErrNoData
	}

	split := 6
	if len(x) <= 30 {
		split = max(len(x)/3, 1)
	}
	p, err := charts.LineRender(
		series,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        x,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart %q: %w", title, err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart %q bytes: %w", title, err)
	}
	return buf, nil
}

// WriteAll renders every chart of r as PNG files in dir, and returns their paths.
func WriteAll(dir string, r *dca.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create chart directory: %w", err)
	}
	renderers := []struct {
		name   string
		render func(*dca.Result) ([]byte, error)
	}{
		{"equity.png", Equity},
		{"return.png", Return},
		{"weights.png", Weights},
		{"cash.png", Cash},
		{"fees.png", FeeRatio},
	}
	var files []string
	for _, c := range renderers {
		buf, err := c.render(r)
		if err != nil {
			return files, err
		}
		file := filepath.Join(dir, c.name)
		if err := os.WriteFile(file, buf, 0644); err != nil {
			return files, fmt.Errorf("cannot write chart: %w", err)
		}
		files = append(files, file)
	}
	return files, nil
}
