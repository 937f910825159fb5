package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Common log attribute keys.
const (
	KeyOperation  = "operation"
	KeySite       = "site"
	KeyUserHash   = "user_hash"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyHTTPStatus = "http_status"
	KeyResult     = "result"
	KeyMeetingKey = "meeting_key"
	KeyError      = "error"
	KeyTool       = "tool"
)

// Status values. Kept in sync with the instrumentation package, which
// imports this one.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithSite returns a logger with the Webex site attribute set.
func WithSite(logger *slog.Logger, site string) *slog.Logger {
	return logger.With(slog.String(KeySite, site))
}

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func Site(site string) slog.Attr { return slog.String(KeySite, site) }

func Tool(tool string) slog.Attr { return slog.String(KeyTool, tool) }

func Status(status string) slog.Attr { return slog.String(KeyStatus, status) }

func HTTPStatus(code int) slog.Attr { return slog.Int(KeyHTTPStatus, code) }

// Result returns an attribute for the XML API result field (SUCCESS, FAILURE, ...).
func Result(result string) slog.Attr { return slog.String(KeyResult, result) }

func MeetingKey(key string) slog.Attr { return slog.String(KeyMeetingKey, key) }

// Err returns a slog attribute for an error.
// A nil error yields an empty group, which slog omits, so
// logger.Info("done", logging.Err(err)) is safe either way.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeUser returns a hashed form of a WebEx ID or email so log lines can
// be correlated without carrying the identity itself. Case is folded first,
// WebEx IDs are case insensitive.
func AnonymizeUser(id string) string {
	if id == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(id)))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user.
func UserHash(id string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeUser(id))
}

// SanitizeToken returns a length indicator for a secret (password, session
// ticket, access token) without exposing any of its content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
