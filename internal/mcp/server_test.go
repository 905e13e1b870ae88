package mcp_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/roadsplit/internal/mcp"
	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
)

const testTimeout = 10 * time.Second

func newService(t *testing.T) *service.Service {
	t.Helper()

	l, err := ledger.New([]int64{5, 1, 7})
	require.NoError(t, err)

	return service.New(l, service.Deps{})
}

// connect runs srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func call(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, result)

	return result
}

func text(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	tc, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return tc.Text
}

func TestNewServer_ToolsRegistered(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{Service: newService(t)})

	assert.Equal(t, []string{
		"roadsplit_query",
		"roadsplit_section_total",
		"roadsplit_update",
	}, srv.ListToolNames())
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Service: newService(t)}))

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 3)

	for _, tool := range tools.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
		assert.NotEmpty(t, tool.Description)
	}
}

func TestServer_UpdateThenQuery(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Service: newService(t)}))

	result := call(t, session, mcp.ToolNameUpdate, map[string]any{"section": 0, "date": "1900-01-11", "cost": 8})
	require.False(t, result.IsError, text(t, result))

	result = call(t, session, mcp.ToolNameQuery, map[string]any{"start": 0, "end": 10})
	require.False(t, result.IsError, text(t, result))

	var view struct {
		Difference int64   `json:"difference"`
		Options    int     `json:"options"`
		Totals     []int64 `json:"totals"`
	}

	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &view))
	assert.Equal(t, int64(8), view.Difference)
	assert.Equal(t, 1, view.Options)
	assert.Equal(t, []int64{58, 11, 77}, view.Totals)
}

func TestServer_SectionTotal(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Service: newService(t)}))

	result := call(t, session, mcp.ToolNameSectionTotal,
		map[string]any{"section": 2, "start_date": "1900-01-01", "end": 9})
	require.False(t, result.IsError, text(t, result))

	var total mcp.SectionTotal

	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &total))
	assert.Equal(t, mcp.SectionTotal{Section: 2, Start: 0, End: 9, Total: 70}, total)
}

func TestServer_ToolErrors(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Service: newService(t)}))

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"missing day", mcp.ToolNameUpdate, map[string]any{"section": 0, "cost": 3}, "day number or a date"},
		{"both day and date", mcp.ToolNameUpdate, map[string]any{"section": 0, "day": 1, "date": "1900-01-02", "cost": 3}, "not both"},
		{"bad date", mcp.ToolNameQuery, map[string]any{"start_date": "1900-02-30", "end": 1}, "date"},
		{"reversed range", mcp.ToolNameQuery, map[string]any{"start": 4, "end": 1}, "after"},
		{"unknown section", mcp.ToolNameSectionTotal, map[string]any{"section": 3, "start": 0, "end": 1}, "section"},
	}

	for _, tt := range tests {
		result := call(t, session, tt.tool, tt.args)
		assert.True(t, result.IsError, tt.name)
		assert.Contains(t, strings.ToLower(text(t, result)), tt.want, tt.name)
	}
}

func TestServer_Telemetry(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
		require.NoError(t, mp.Shutdown(context.Background()))
	})

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	srv := mcp.NewServer(mcp.ServerDeps{Service: newService(t), Tracer: tp.Tracer("test"), Metrics: red})
	session := connect(t, srv)

	result := call(t, session, mcp.ToolNameQuery, map[string]any{"start": 0, "end": 0})
	require.False(t, result.IsError)

	last, ok := result.Content[len(result.Content)-1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(last.Text, "trace_id="))

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, "mcp.roadsplit_query", spans[0].Name)

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	var requests int64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, isSum := m.Data.(metricdata.Sum[int64])
			if m.Name != "roadsplit.requests.total" || !isSum {
				continue
			}

			for _, dp := range sum.DataPoints {
				requests += dp.Value
			}
		}
	}

	assert.Equal(t, int64(1), requests)
}
