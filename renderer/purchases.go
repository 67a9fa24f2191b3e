package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/dca"
	md "github.com/nao1215/markdown"
)

// PurchasesMarkdown renders the trade journal of r.
func PurchasesMarkdown(r *dca.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Purchases")
	if len(r.Purchases) == 0 {
		doc.PlainText("No purchase.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Date", "Instrument", "Shares", "Price", "Fees", "Cost"},
		Rows:   [][]string{},
	}
	for _, p := range r.Purchases {
		table.Rows = append(table.Rows, []string{
			p.Date.String(),
			p.Instrument,
			fmt.Sprint(p.Shares),
			dca.M(p.Price, r.Currency).String(),
			dca.M(p.Fees(), r.Currency).String(),
			dca.M(p.Cost(), r.Currency).String(),
		})
	}
	doc.Table(table)

	return doc.String()
}
