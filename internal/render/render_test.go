package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/roadsplit/internal/render"
	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/pkg/mathutil"
	"github.com/Sumatoshi-tech/roadsplit/pkg/partition"
)

func sampleResult() service.QueryResult {
	totals := []int64{1, 2, 10}

	return service.QueryResult{
		Start:  0,
		End:    0,
		Totals: totals,
		Total:  mathutil.FromInt64(13),
		Result: partition.Search(totals),
	}
}

func renderAll(t *testing.T, format string, results ...service.QueryResult) string {
	t.Helper()

	r, err := render.New(format, render.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer

	for _, res := range results {
		require.NoError(t, r.Render(&buf, res))
	}

	require.NoError(t, r.Flush(&buf))

	return buf.String()
}

func TestFormats(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"html", "json", "table", "text", "yaml"}, render.Formats())

	for _, name := range render.Formats() {
		_, err := render.New(name, render.Options{})
		require.NoError(t, err, name)
	}

	_, err := render.New("xml", render.Options{})
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestText(t *testing.T) {
	t.Parallel()

	out := renderAll(t, render.FormatText, sampleResult())
	assert.Equal(t, "Difference: 7, options: 1\n* 0 - 1, 2 - 2\n", out)
}

func TestText_NoAssignments(t *testing.T) {
	t.Parallel()

	out := renderAll(t, render.FormatText, service.QueryResult{})
	assert.Equal(t, "Difference: 0, options: 0\n", out)
}

func TestTable(t *testing.T) {
	t.Parallel()

	res := sampleResult()
	res.Start, res.End = 1000, 12000

	out := renderAll(t, render.FormatTable, res)

	assert.Contains(t, out, "Days 1,000 to 12,000")
	assert.Contains(t, out, "Difference: 7")
	assert.Contains(t, out, "0 - 1")
	assert.Contains(t, out, "2 - 2")
	assert.Contains(t, out, "10")
	assert.NotContains(t, out, "\x1b[", "colors disabled")
}

func TestTable_Color(t *testing.T) {
	t.Parallel()

	r, err := render.New(render.FormatTable, render.Options{Color: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleResult()))

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestJSON(t *testing.T) {
	t.Parallel()

	out := renderAll(t, render.FormatJSON, sampleResult(), sampleResult())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var view struct {
		Difference  int64 `json:"difference"`
		Options     int   `json:"options"`
		Assignments []struct {
			First  partition.Arc `json:"first"`
			Second partition.Arc `json:"second"`
		} `json:"assignments"`
		Totals []int64 `json:"totals"`
		Total  int64   `json:"total"`
	}

	require.NoError(t, json.Unmarshal([]byte(lines[0]), &view))
	assert.Equal(t, int64(7), view.Difference)
	assert.Equal(t, 1, view.Options)
	assert.Equal(t, partition.Arc{Start: 0, End: 1}, view.Assignments[0].First)
	assert.Equal(t, partition.Arc{Start: 2, End: 2}, view.Assignments[0].Second)
	assert.Equal(t, []int64{1, 2, 10}, view.Totals)
	assert.Equal(t, int64(13), view.Total)
}

func TestJSON_EmptyAssignmentsIsArray(t *testing.T) {
	t.Parallel()

	out := renderAll(t, render.FormatJSON, service.QueryResult{})
	assert.Contains(t, out, `"assignments":[]`)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	out := renderAll(t, render.FormatYAML, sampleResult(), sampleResult())

	docs := strings.Split(out, "---\n")
	require.Len(t, docs, 2)

	var view map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(docs[1]), &view))
	assert.Equal(t, 7, view["difference"])
	assert.Equal(t, 1, view["options"])
}

func TestHTML(t *testing.T) {
	t.Parallel()

	r, err := render.New(render.FormatHTML, render.Options{Title: "Split report"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleResult()))
	assert.Zero(t, buf.Len(), "charts are written on flush")

	require.NoError(t, r.Flush(&buf))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Split report")
	assert.Contains(t, out, "#5470c6")
	assert.Contains(t, out, "#91cc75")
}

func TestArcTotal(t *testing.T) {
	t.Parallel()

	totals := []int64{1, 2, 3, 4}

	assert.Equal(t, "5", render.ArcTotal(totals, partition.Arc{Start: 3, End: 0}).String())
	assert.Equal(t, "5", render.ArcTotal(totals, partition.Arc{Start: 1, End: 2}).String())
	assert.Equal(t, "10", render.ArcTotal(totals, partition.Arc{Start: 0, End: 3}).String())
}
