package render

import (
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/roadsplit/internal/service"
)

// textRenderer writes the line format of the command stream:
//
//	Difference: <diff>, options: <count>
//	* <s1> - <e1>, <s2> - <e2>
type textRenderer struct{}

func (textRenderer) Render(w io.Writer, res service.QueryResult) error {
	_, err := fmt.Fprintf(w, "Difference: %s, options: %d\n", res.Result.Diff, len(res.Result.Assignments))
	if err != nil {
		return fmt.Errorf("write difference: %w", err)
	}

	for _, a := range res.Result.Assignments {
		_, err = fmt.Fprintf(w, "* %s\n", a)
		if err != nil {
			return fmt.Errorf("write assignment: %w", err)
		}
	}

	return nil
}

func (textRenderer) Flush(io.Writer) error {
	return nil
}
