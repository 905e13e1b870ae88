package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/roadsplit/internal/service"
)

// jsonRenderer writes one JSON object per line.
type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, res service.QueryResult) error {
	err := json.NewEncoder(w).Encode(NewView(res))
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

func (jsonRenderer) Flush(io.Writer) error {
	return nil
}

// yamlRenderer writes one YAML document per result.
type yamlRenderer struct {
	written bool
}

func (r *yamlRenderer) Render(w io.Writer, res service.QueryResult) error {
	if r.written {
		_, err := io.WriteString(w, "---\n")
		if err != nil {
			return fmt.Errorf("write yaml separator: %w", err)
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(NewView(res))
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	r.written = true

	return nil
}

func (r *yamlRenderer) Flush(io.Writer) error {
	return nil
}
