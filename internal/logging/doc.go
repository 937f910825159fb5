// Package logging provides structured logging helpers for wbxmeet.
//
// All logging goes through log/slog. The helpers here keep attribute names
// consistent across the XML API client, the OAuth web app and the MCP server,
// and make it easy to log identities and secrets safely:
//
//	logger := logging.WithOperation(slog.Default(), "GetUser")
//	logger.Info("call completed",
//	    logging.Site(site),
//	    logging.UserHash(webExID),
//	    logging.Status(logging.StatusSuccess))
//
// WebEx IDs are hashed with AnonymizeUser and credentials are reduced to a
// length indicator with SanitizeToken. Passwords, session tickets and access
// tokens are never logged verbatim.
package logging
