package meetings

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/wbxmeet/internal/logging"
	"github.com/teemow/wbxmeet/internal/xmlapi"
)

var (
	// ErrNoSession is returned when an operation gets a zero Session.
	ErrNoSession = errors.New("no session, authenticate first")
	// ErrSessionExpired is returned for a Session past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrMissingCredential is returned by AuthenticateUser when neither a
	// password nor an access token is supplied.
	ErrMissingCredential = errors.New("password or access token is required")
	// ErrInvalidInput wraps validation failures of operation inputs.
	ErrInvalidInput = errors.New("invalid input")
)

// Credentials are the inputs of AuthenticateUser. When AccessToken is set it
// is used and Password is ignored.
type Credentials struct {
	SiteName    string
	WebExID     string
	Password    string
	AccessToken string
}

// Session is the authenticated context every call after AuthenticateUser
// needs. It is a value: copies are independent and nothing mutates it.
type Session struct {
	siteName      string
	webExID       string
	sessionTicket string
	accessToken   string
	createdAt     time.Time
	expiresAt     time.Time
}

// NewSession returns a ticket-based Session. A zero expiresAt means the
// session does not expire locally.
func NewSession(siteName, webExID, ticket string, expiresAt time.Time) Session {
	return Session{
		siteName:      siteName,
		webExID:       webExID,
		sessionTicket: ticket,
		createdAt:     time.Now(),
		expiresAt:     expiresAt,
	}
}

// NewTokenSession returns a Session that authenticates every call with an
// OAuth access token, sent as webExAccessToken, instead of a ticket.
func NewTokenSession(siteName, webExID, accessToken string, expiresAt time.Time) Session {
	return Session{
		siteName:    siteName,
		webExID:     webExID,
		accessToken: accessToken,
		createdAt:   time.Now(),
		expiresAt:   expiresAt,
	}
}

func (s Session) SiteName() string { return s.siteName }

func (s Session) WebExID() string { return s.webExID }

// Ticket returns the session ticket, empty for token sessions.
func (s Session) Ticket() string { return s.sessionTicket }

// AccessToken returns the OAuth access token, empty for ticket sessions.
func (s Session) AccessToken() string { return s.accessToken }

func (s Session) CreatedAt() time.Time { return s.createdAt }

// ExpiresAt returns the expiry, or the zero time if unknown.
func (s Session) ExpiresAt() time.Time { return s.expiresAt }

// IsToken reports whether the session uses an OAuth access token.
func (s Session) IsToken() bool { return s.accessToken != "" && s.sessionTicket == "" }

// IsZero reports whether s carries no credential.
func (s Session) IsZero() bool {
	return s.siteName == "" || (s.sessionTicket == "" && s.accessToken == "")
}

// Check returns ErrNoSession or ErrSessionExpired when s cannot be used at now.
func (s Session) Check(now time.Time) error {
	if s.IsZero() {
		return ErrNoSession
	}
	if !s.expiresAt.IsZero() && !now.Before(s.expiresAt) {
		return fmt.Errorf("%w at %s", ErrSessionExpired, s.expiresAt.Format(time.RFC3339))
	}
	return nil
}

// SecurityContext returns the envelope header for calls made with s.
func (s Session) SecurityContext() xmlapi.SecurityContext {
	return xmlapi.SecurityContext{
		SiteName:      s.siteName,
		WebExID:       s.webExID,
		SessionTicket: s.sessionTicket,
		AccessToken:   s.accessToken,
	}
}

// String never includes the credential.
func (s Session) String() string {
	kind := "ticket"
	if s.IsToken() {
		kind = "token"
	}
	return fmt.Sprintf("Session{site=%s user=%s %s}", s.siteName, s.webExID, kind)
}

// LogValue implements slog.LogValuer so a Session can be logged directly.
func (s Session) LogValue() slog.Value {
	attrs := []slog.Attr{
		logging.Site(s.siteName),
		logging.UserHash(s.webExID),
	}
	if !s.expiresAt.IsZero() {
		attrs = append(attrs, slog.Time("expires_at", s.expiresAt))
	}
	return slog.GroupValue(attrs...)
}
