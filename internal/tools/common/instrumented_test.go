package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/wbxmeet/internal/instrumentation"
	"github.com/teemow/wbxmeet/internal/logging"
	"github.com/teemow/wbxmeet/internal/meetings"
	"github.com/teemow/wbxmeet/internal/server"
	"github.com/teemow/wbxmeet/internal/webexauth"
	"github.com/teemow/wbxmeet/internal/xmlapi"
)

func newTestServerContext(t *testing.T, metrics *instrumentation.Metrics) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), server.ServerContextConfig{
		Meetings:      meetings.NewClient(xmlapi.NewClient(), meetings.WithLogger(logging.Discard())),
		Tokens:        webexauth.StaticTokenProvider("tok"),
		OAuthSiteName: "acme",
		OAuthWebExID:  "bob@acme.com",
		Metrics:       metrics,
		Logger:        logging.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func newTestMetrics(t *testing.T) (*instrumentation.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)
	return m, reader
}

// toolCounts returns mcp_tool_invocations_total per status.
func toolCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				counts[status.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestInstrumentedToolHandler(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	sc := newTestServerContext(t, metrics)
	ctx := context.Background()

	ok := InstrumentedToolHandler("webex_get_user", true, sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("fine"), nil
	})
	failed := InstrumentedToolHandler("webex_get_user", true, sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("nope"), nil
	})
	broken := InstrumentedToolHandler("webex_get_user", true, sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})

	result, err := ok(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = failed(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	_, err = broken(ctx, mcp.CallToolRequest{})
	assert.EqualError(t, err, "boom")

	assert.Equal(t, map[string]int64{"success": 1, "error": 2}, toolCounts(t, reader))
}

func TestInstrumentedToolHandler_NilMetrics(t *testing.T) {
	sc := newTestServerContext(t, nil)
	called := false
	h := InstrumentedToolHandler("webex_list_meetings", true, sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	})
	_, err := h(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestInstrumentedToolHandler_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	sc := newTestServerContext(t, nil)
	h := InstrumentedToolHandler("webex_delete_meeting", false, sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("gone"), nil
	})
	_, err := h(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "tool.webex_delete_meeting", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "webex_delete_meeting", attrs[instrumentation.SpanAttrTool].AsString())
	assert.False(t, attrs[instrumentation.SpanAttrReadOnly].AsBool())
	assert.Equal(t, "acme", attrs[instrumentation.SpanAttrSite].AsString())
}
