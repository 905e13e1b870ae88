package render

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/pkg/mathutil"
)

type tableRenderer struct {
	header  *color.Color
	balance *color.Color
	muted   *color.Color
}

func newTableRenderer(opts Options) *tableRenderer {
	r := &tableRenderer{
		header:  color.New(color.FgCyan, color.Bold),
		balance: color.New(color.FgGreen),
		muted:   color.New(color.FgHiBlack),
	}

	for _, c := range []*color.Color{r.header, r.balance, r.muted} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return r
}

func (r *tableRenderer) Render(w io.Writer, res service.QueryResult) error {
	title := fmt.Sprintf("Days %s to %s", humanize.Comma(res.Start), humanize.Comma(res.End))
	summary := fmt.Sprintf("Difference: %s  Options: %d  Total: %s",
		r.balance.Sprint(comma(res.Result.Diff)),
		len(res.Result.Assignments),
		comma(res.Total))

	_, err := fmt.Fprintf(w, "%s\n%s\n", r.header.Sprint(title), summary)
	if err != nil {
		return fmt.Errorf("write table header: %w", err)
	}

	if len(res.Result.Assignments) == 0 {
		_, err = fmt.Fprintln(w, r.muted.Sprint("No assignments"))
		if err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		return nil
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "First", "First total", "Second", "Second total"})

	for i, a := range res.Result.Assignments {
		tbl.AppendRow(table.Row{
			i + 1,
			a.A.String(),
			comma(ArcTotal(res.Totals, a.A)),
			a.B.String(),
			comma(ArcTotal(res.Totals, a.B)),
		})
	}

	tbl.AppendFooter(table.Row{"", "", "", "Sections", len(res.Totals)})

	_, err = fmt.Fprintf(w, "%s\n", tbl.Render())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

func (r *tableRenderer) Flush(io.Writer) error {
	return nil
}

func comma(x mathutil.Int128) string {
	if x.IsInt64() {
		return humanize.Comma(x.Int64())
	}

	return humanize.BigComma(x.Big())
}
