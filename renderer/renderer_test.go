package renderer

import (
	"testing"

	"github.com/etnz/dca"
	"github.com/etnz/dca/date"
	"github.com/etnz/dca/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func sampleResult() *dca.Result {
	start, end := date.MustParse("2020-01-01"), date.MustParse("2020-04-15")
	return &dca.Result{
		Currency:    "USD",
		Instruments: []string{"A", "B"},
		Samples: []dca.Sample{
			{Date: start, Equity: 1000, Invested: 1001.5, Return: -0.15, FeeRatio: 0.15, Weights: []float64{0.5, 0.5}},
			{Date: end, Equity: 1370, Invested: 1301.5, Return: 5.26, FeeRatio: 0.12, Weights: []float64{0, 0}, Final: true},
		},
		Purchases: []dca.Purchase{
			{Date: start, Instrument: "A", Shares: 5, Price: 100},
			{Date: start, Instrument: "B", Shares: 10, Price: 50, ProportionalFee: 0.5, AbsoluteFee: 1},
		},
		Summary: dca.Summary{
			Start:            start,
			End:              end,
			Days:             105,
			Contributed:      1300,
			Invested:         1300,
			Fees:             1.5,
			Equity:           1370,
			Return:           5.3846,
			AnnualizedReturn: 18.7179,
			Shares:           []int64{5, 10},
		},
	}
}

// parse returns the headings and the number of table body rows of a markdown document.
func parse(t *testing.T, src string) (headings []string, rows int) {
	t.Helper()
	source := []byte(src)
	doc := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			headings = append(headings, string(n.Text(source)))
		case east.KindTableRow:
			rows++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("cannot walk markdown: %v", err)
	}
	return headings, rows
}

func TestSummaryMarkdown(t *testing.T) {
	got := SummaryMarkdown(sampleResult())

	headings, rows := parse(t, got)
	assert.Equal(t, []string{"Simulation from 2020-01-01 to 2020-04-15", "Figures", "Holdings"}, headings)
	assert.Equal(t, 8+2, rows)

	assert.Contains(t, got, "105 days, amounts in USD.")
	assert.Contains(t, got, "| Equity | $1,370.00 |")
	assert.Contains(t, got, "| Gain | +$70.00 |")
	assert.Contains(t, got, "| Return | +5.38% |")
	assert.Contains(t, got, "| A | 5 | 1 | $500.00 | $0.00 |")
	assert.Contains(t, got, "| B | 10 | 1 | $501.50 | $1.50 |")
}

func TestSamplesMarkdown(t *testing.T) {
	got := SamplesMarkdown(sampleResult())

	headings, rows := parse(t, got)
	assert.Equal(t, []string{"Time Series"}, headings)
	assert.Equal(t, 2, rows)
	assert.Contains(t, got, "**2020-04-15**")
	assert.Contains(t, got, "50.0%")
	assert.Contains(t, got, "$1,370.00")
}

func TestPurchasesMarkdown(t *testing.T) {
	got := PurchasesMarkdown(sampleResult())

	headings, rows := parse(t, got)
	assert.Equal(t, []string{"Purchases"}, headings)
	assert.Equal(t, 2, rows)
	assert.Contains(t, got, "$501.50")

	r := sampleResult()
	r.Purchases = nil
	assert.Contains(t, PurchasesMarkdown(r), "No purchase.")
}

func TestRunsMarkdown(t *testing.T) {
	assert.Contains(t, RunsMarkdown(nil), "No run archived yet.")

	r := sampleResult()
	runs := []store.Run{{
		ID:          uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Currency:    r.Currency,
		Start:       r.Summary.Start,
		End:         r.Summary.End,
		Instruments: r.Instruments,
		Invested:    r.Summary.Invested,
		Equity:      r.Summary.Equity,
		Return:      r.Summary.Return,
	}}
	got := RunsMarkdown(runs)
	headings, rows := parse(t, got)
	assert.Equal(t, []string{"Archived Runs"}, headings)
	assert.Equal(t, 1, rows)
	assert.Contains(t, got, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Contains(t, got, "2020-01-01..2020-04-15")
	assert.Contains(t, got, "A, B")
	assert.Contains(t, got, "+5.38%")
}
