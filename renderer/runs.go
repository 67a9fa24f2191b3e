package renderer

import (
	"bytes"
	"strings"
	"time"

	"github.com/etnz/dca"
	"github.com/etnz/dca/date"
	"github.com/etnz/dca/store"
	md "github.com/nao1215/markdown"
)

// RunsMarkdown renders the list of archived runs.
func RunsMarkdown(runs []store.Run) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Archived Runs")
	if len(runs) == 0 {
		doc.PlainText("No run archived yet.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Run", "Created", "Period", "Instruments", "Invested", "Equity", "Return", "Annualized"},
		Rows:   [][]string{},
	}
	for _, r := range runs {
		table.Rows = append(table.Rows, []string{
			r.ID.String(),
			r.Created.Local().Format(time.DateTime),
			date.NewRange(r.Start, r.End).String(),
			strings.Join(r.Instruments, ", "),
			dca.M(r.Invested, r.Currency).String(),
			dca.M(r.Equity, r.Currency).String(),
			r.Return.SignedString(),
			r.AnnualizedReturn.SignedString(),
		})
	}
	doc.Table(table)

	return doc.String()
}
