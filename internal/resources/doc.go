// Package resources provides MCP resources for exposing user and session data.
// Resources are read-only data sources that MCP clients can fetch without a
// tool call: the profile of the session user and their upcoming meetings.
package resources
