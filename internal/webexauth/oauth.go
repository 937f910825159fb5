package webexauth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// Webex OAuth2 endpoints.
const (
	AuthURL  = "https://api.webex.com/v1/oauth2/authorize"
	TokenURL = "https://api.webex.com/v1/oauth2/token"
)

// DefaultScopes are the integration scopes needed to read users and manage
// meetings.
var DefaultScopes = []string{"all_read", "meeting_modify"}

// ErrNotConfigured is returned when no client ID or secret is set.
var ErrNotConfigured = errors.New("OAuth client ID and secret are required")

// Endpoint is the Webex OAuth2 endpoint. Client credentials go in the
// request body (client_secret_post).
var Endpoint = oauth2.Endpoint{
	AuthURL:   AuthURL,
	TokenURL:  TokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// Config holds the integration registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Endpoint overrides the Webex endpoint, for tests.
	Endpoint *oauth2.Endpoint
}

// Validate reports whether the client is registered.
func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrNotConfigured
	}
	return nil
}

// OAuth2 returns the golang.org/x/oauth2 form of c.
func (c Config) OAuth2() *oauth2.Config {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	endpoint := Endpoint
	if c.Endpoint != nil {
		endpoint = *c.Endpoint
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}
}

// ParseScopes splits a space or comma separated scope list.
func ParseScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
}

// ExchangeError is returned when the token endpoint rejects an
// authorization code.
type ExchangeError struct {
	Code        string
	Description string
	Err         error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %s: %s", e.Code, e.Description)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

func newExchangeError(err error) *ExchangeError {
	e := &ExchangeError{Code: "exchange_failed", Description: err.Error(), Err: err}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		e.Code, e.Description = re.ErrorCode, re.ErrorDescription
		if e.Code == "" && re.Response != nil {
			e.Code = fmt.Sprintf("HTTP %d", re.Response.StatusCode)
		}
		if e.Description == "" {
			e.Description = strings.TrimSpace(string(re.Body))
		}
	}
	return e
}
