// Package server hosts the long-running parts of wbxmeet.
//
// ServerContext is shared by the MCP tools. It caches the Webex session and
// authenticates again when the session is missing or expired; in OAuth mode
// it wraps the account's cached access token instead.
//
// OAuthApp is the browser login flow for Webex OAuth enabled sites:
//   - /login starts an authorization code grant with PKCE
//   - /authorize exchanges the code and caches the token
//   - /GetUser calls GetUser with the token and returns the XML
//
// MetricsServer exposes Prometheus metrics on a dedicated address, and
// HealthChecker serves /healthz and /readyz.
package server
