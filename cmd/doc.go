// Package cmd implements the command-line interface for wbxmeet.
//
// This package provides the following commands:
//   - flow: Run the sample sequence (authenticate, create, list, get, delete)
//   - user: Show the session user
//   - meeting: Create, list, get or delete meetings
//   - oauth: Run the OAuth login web app or show the cached token
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The flow command is the default command when no subcommand is specified.
package cmd
