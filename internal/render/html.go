package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/pkg/partition"
)

const (
	defaultPageTitle = "Road maintenance split"
	chartWidth       = "100%"
	chartHeight      = "420px"

	colorFirst  = "#5470c6"
	colorSecond = "#91cc75"
	colorNone   = "#9ca3af"
)

// htmlRenderer collects one bar chart per result and writes a single page on
// Flush. Bars are colored by the arc of the first assignment they fall on.
type htmlRenderer struct {
	title  string
	charts []components.Charter
}

func newHTMLRenderer(opts Options) *htmlRenderer {
	title := opts.Title
	if title == "" {
		title = defaultPageTitle
	}

	return &htmlRenderer{title: title}
}

func (r *htmlRenderer) Render(_ io.Writer, res service.QueryResult) error {
	r.charts = append(r.charts, totalsChart(res))

	return nil
}

func (r *htmlRenderer) Flush(w io.Writer) error {
	page := components.NewPage()
	page.SetPageTitle(r.title)
	page.AddCharts(r.charts...)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render html page: %w", err)
	}

	r.charts = nil

	return nil
}

func totalsChart(res service.QueryResult) *charts.Bar {
	bar := charts.NewBar()

	subtitle := fmt.Sprintf("Difference %s, %d option(s)", res.Result.Diff, len(res.Result.Assignments))
	if len(res.Result.Assignments) > 0 {
		subtitle += ", showing " + res.Result.Assignments[0].String()
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Days %d to %d", res.Start, res.End),
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cost"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Section"}),
	)

	labels := make([]string, len(res.Totals))
	data := make([]opts.BarData, len(res.Totals))

	for i, total := range res.Totals {
		labels[i] = strconv.Itoa(i)
		data[i] = opts.BarData{
			Value:     total,
			ItemStyle: &opts.ItemStyle{Color: sectionColor(res.Result, i)},
		}
	}

	bar.SetXAxis(labels)
	bar.AddSeries("Total cost", data)

	return bar
}

func sectionColor(res partition.Result, section int) string {
	if len(res.Assignments) == 0 {
		return colorNone
	}

	if res.Assignments[0].A.Contains(section) {
		return colorFirst
	}

	return colorSecond
}
