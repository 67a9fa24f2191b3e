package dca

import (
	"fmt"
	"io"
)

// EncodeSamples writes the time series of r as JSONL, one sample per line:
//
//	{"on":"2020-02-03","equity":1523.1,"invested":1500,"remaining":12.4,"return":1.54,"fees":0.2,"weights":{"AAA":0.4,"BBB":0.6}}
//
// The closing sample carries "final":true.
func EncodeSamples(w io.Writer, r *Result) error {
	for _, s := range r.Samples {
		var jw jsonObjectWriter
		jw.Append(attrOn, s.Date.String())
		jw.Append("equity", s.Equity)
		jw.Append("invested", s.Invested)
		jw.Append("remaining", s.Remaining)
		jw.Append("return", float64(s.Return))
		jw.Append("fees", float64(s.FeeRatio))
		jw.Object("weights", func(o *jsonObjectWriter) {
			for i, name := range r.Instruments {
				o.Append(name, s.Weights[i])
			}
		})
		jw.Optional("final", s.Final)
		line, err := jw.MarshalJSON()
		if err != nil {
			return fmt.Errorf("cannot encode sample of %v: %w", s.Date, err)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
