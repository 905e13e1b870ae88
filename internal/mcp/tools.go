package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/roadsplit/internal/render"
	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/pkg/calendar"
)

// Tool name constants.
const (
	ToolNameUpdate       = "roadsplit_update"
	ToolNameQuery        = "roadsplit_query"
	ToolNameSectionTotal = "roadsplit_section_total"
)

// Sentinel errors for tool input validation.
var (
	// ErrMissingDay indicates neither a day number nor a date was given.
	ErrMissingDay = errors.New("a day number or a date is required")
	// ErrAmbiguousDay indicates both a day number and a date were given.
	ErrAmbiguousDay = errors.New("give either a day number or a date, not both")
)

// UpdateInput is the input schema for the roadsplit_update tool.
type UpdateInput struct {
	Section int    `json:"section"        jsonschema:"zero-based road section index"`
	Day     *int64 `json:"day,omitempty"  jsonschema:"day number counted from 1900-01-01 (day 0)"`
	Date    string `json:"date,omitempty" jsonschema:"calendar date as YYYY-MM-DD, instead of day"`
	Cost    int64  `json:"cost"           jsonschema:"new positive daily cost, effective from the day on"`
}

// QueryInput is the input schema for the roadsplit_query tool.
type QueryInput struct {
	Start     *int64 `json:"start,omitempty"      jsonschema:"first day number of the range"`
	End       *int64 `json:"end,omitempty"        jsonschema:"last day number of the range (inclusive)"`
	StartDate string `json:"start_date,omitempty" jsonschema:"first date of the range as YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty"   jsonschema:"last date of the range as YYYY-MM-DD"`
}

// SectionTotalInput is the input schema for the roadsplit_section_total tool.
type SectionTotalInput struct {
	Section   int    `json:"section"              jsonschema:"zero-based road section index"`
	Start     *int64 `json:"start,omitempty"      jsonschema:"first day number of the range"`
	End       *int64 `json:"end,omitempty"        jsonschema:"last day number of the range (inclusive)"`
	StartDate string `json:"start_date,omitempty" jsonschema:"first date of the range as YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty"   jsonschema:"last date of the range as YYYY-MM-DD"`
}

func (in SectionTotalInput) rangeInput() QueryInput {
	return QueryInput{Start: in.Start, End: in.End, StartDate: in.StartDate, EndDate: in.EndDate}
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// SectionTotal is the roadsplit_section_total result.
type SectionTotal struct {
	Section int   `json:"section"`
	Start   int64 `json:"start"`
	End     int64 `json:"end"`
	Total   int64 `json:"total"`
}

type updateAck struct {
	Accepted bool  `json:"accepted"`
	Section  int   `json:"section"`
	Day      int64 `json:"day"`
	Cost     int64 `json:"cost"`
}

func (s *Server) handleUpdate(ctx context.Context, _ *mcpsdk.CallToolRequest, in UpdateInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	day, err := resolveDay(in.Day, in.Date)
	if err != nil {
		return errorResult(err)
	}

	err = s.svc.Update(ctx, service.Update{Section: in.Section, Day: day, Cost: in.Cost})
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(updateAck{Accepted: true, Section: in.Section, Day: day, Cost: in.Cost})
}

func (s *Server) handleQuery(ctx context.Context, _ *mcpsdk.CallToolRequest, in QueryInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	start, end, err := in.days()
	if err != nil {
		return errorResult(err)
	}

	res, err := s.svc.Query(ctx, start, end)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(render.NewView(res))
}

func (s *Server) handleSectionTotal(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in SectionTotalInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	start, end, err := in.rangeInput().days()
	if err != nil {
		return errorResult(err)
	}

	total, err := s.svc.SectionTotal(ctx, in.Section, start, end)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(SectionTotal{Section: in.Section, Start: start, End: end, Total: total})
}

func (in QueryInput) days() (start, end int64, err error) {
	start, err = resolveDay(in.Start, in.StartDate)
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}

	end, err = resolveDay(in.End, in.EndDate)
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}

	return start, end, nil
}

func resolveDay(day *int64, date string) (int64, error) {
	switch {
	case day != nil && date != "":
		return 0, ErrAmbiguousDay
	case day != nil:
		return *day, nil
	case date == "":
		return 0, ErrMissingDay
	}

	n, err := calendar.ParseDay(date)
	if err != nil {
		return 0, fmt.Errorf("date: %w", err)
	}

	return n, nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// Tool description constants.
const (
	updateToolDescription = "Record a new daily maintenance cost for one road section. " +
		"The cost applies from the given day until the next update of that section. " +
		"Days must strictly increase across all updates."

	queryToolDescription = "Split the circular road into two contiguous arcs whose total cost " +
		"over an inclusive day range is as balanced as possible. " +
		"Returns the minimal difference and every distinct split reaching it."

	sectionTotalToolDescription = "Total maintenance cost of one road section over an inclusive day range."
)
