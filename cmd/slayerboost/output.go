package main

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/TheInsomnolent/slayer-boosting/display"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	return tw
}

// renderPanel draws the overlay panel; milestone values are shown in bold.
func renderPanel(w io.Writer, p *display.Panel) {
	tw := newTable(w)
	tw.SetTitle(p.Title)
	for _, l := range p.Lines {
		right := l.Right
		if l.Color != display.NormalColor {
			right = text.Bold.Sprint(right)
		}
		tw.AppendRow(table.Row{l.Left, right})
	}
	tw.Render()
}
