// Package render writes query results in the supported output formats.
package render

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/pkg/mathutil"
	"github.com/Sumatoshi-tech/roadsplit/pkg/partition"
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatHTML  = "html"
)

// ErrUnknownFormat indicates an output format with no renderer.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer writes query results. Render is called once per result; Flush is
// called once after the last one.
type Renderer interface {
	Render(w io.Writer, res service.QueryResult) error
	Flush(w io.Writer) error
}

// Options tune the renderers that support them.
type Options struct {
	// Color enables ANSI colors in table output.
	Color bool
	// Title heads the HTML page.
	Title string
}

// Formats returns the supported format names in sorted order.
func Formats() []string {
	names := []string{FormatText, FormatTable, FormatJSON, FormatYAML, FormatHTML}
	slices.Sort(names)

	return names
}

// New returns the renderer for format.
func New(format string, opts Options) (Renderer, error) {
	switch format {
	case FormatText:
		return textRenderer{}, nil
	case FormatTable:
		return newTableRenderer(opts), nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatYAML:
		return &yamlRenderer{}, nil
	case FormatHTML:
		return newHTMLRenderer(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// View is the serialized form of a query result.
type View struct {
	Start       int64                  `json:"start"       yaml:"start"`
	End         int64                  `json:"end"         yaml:"end"`
	Difference  mathutil.Int128        `json:"difference"  yaml:"difference"`
	Options     int                    `json:"options"     yaml:"options"`
	Assignments []partition.Assignment `json:"assignments" yaml:"assignments"`
	Totals      []int64                `json:"totals"      yaml:"totals"`
	Total       mathutil.Int128        `json:"total"       yaml:"total"`
}

// NewView converts res into its serialized form.
func NewView(res service.QueryResult) View {
	assignments := res.Result.Assignments
	if assignments == nil {
		assignments = []partition.Assignment{}
	}

	return View{
		Start:       res.Start,
		End:         res.End,
		Difference:  res.Result.Diff,
		Options:     len(assignments),
		Assignments: assignments,
		Totals:      res.Totals,
		Total:       res.Total,
	}
}

// ArcTotal sums the totals of the sections on arc.
func ArcTotal(totals []int64, arc partition.Arc) mathutil.Int128 {
	var sum mathutil.Int128

	for i, t := range totals {
		if arc.Contains(i) {
			sum = sum.AddInt64(t)
		}
	}

	return sum
}
