package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/dca"
	md "github.com/nao1215/markdown"
)

// SamplesMarkdown renders the time series of r as a markdown table, one row per sample.
func SamplesMarkdown(r *dca.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Time Series")

	alignment := []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight}
	header := []string{"Date", "Equity", "Invested", "Remaining", "Return", "Fees"}
	for _, name := range r.Instruments {
		alignment = append(alignment, md.AlignRight)
		header = append(header, name)
	}
	table := md.TableSet{
		Alignment: alignment,
		Header:    header,
		Rows:      [][]string{},
	}
	for _, s := range r.Samples {
		day := s.Date.String()
		if s.Final {
			day = md.Bold(day)
		}
		row := []string{
			day,
			dca.M(s.Equity, r.Currency).String(),
			dca.M(s.Invested, r.Currency).String(),
			dca.M(s.Remaining, r.Currency).String(),
			s.Return.SignedString(),
			s.FeeRatio.String(),
		}
		for _, w := range s.Weights {
			row = append(row, weight(w, s.Final))
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)

	return doc.String()
}

// weight formats an instrument weight, the closing sample has none.
func weight(w float64, final bool) string {
	if final {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", w*100)
}
