// Package instrumentation provides OpenTelemetry metrics and tracing for wbxmeet.
//
// # Metrics
//
// XML API:
//   - xml_api_operations_total: calls by operation and result class
//   - xml_api_operation_duration_seconds: call latency
//
// OAuth web app:
//   - http_requests_total, http_request_duration_seconds
//   - oauth_auth_total, oauth_token_refresh_total
//
// MCP server:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//   - active_sessions: cached Webex sessions
//
// Result labels are folded into a fixed set by ResultClass so that free-text
// result codes from the service cannot blow up cardinality.
//
// # Tracing
//
// Each XML API call gets a client span "webex.<Operation>", each MCP tool
// invocation a server span "tool.<name>".
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER
// (prometheus, otlp, stdout), TRACING_EXPORTER (otlp, stdout, none),
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE,
// OTEL_TRACES_SAMPLER_ARG, OTEL_SERVICE_NAME, METRICS_DETAILED_LABELS,
// AUDIT_LOGGING_ENABLED and AUDIT_LOGGING_INCLUDE_PII.
//
// # Example
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordAPIOperation(ctx, "GetUser", instrumentation.ResultSuccess, site, time.Since(start))
package instrumentation
