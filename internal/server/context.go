package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/wbxmeet/internal/instrumentation"
	"github.com/teemow/wbxmeet/internal/meetings"
	"github.com/teemow/wbxmeet/internal/webexauth"
	"github.com/teemow/wbxmeet/internal/xmlapi"
)

// ErrShutdown is returned once the server context has been shut down.
var ErrShutdown = errors.New("server is shutting down")

// ServerContextConfig configures a ServerContext.
type ServerContextConfig struct {
	Meetings *meetings.Client

	// Credentials are used for password or ACCESS_TOKEN authentication.
	Credentials meetings.Credentials

	// Tokens, when set, switches to OAuth: every account gets a token
	// session for OAuthSiteName and OAuthWebExID.
	Tokens        webexauth.TokenProvider
	OAuthSiteName string
	OAuthWebExID  string

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
	// Now replaces time.Now for expiry checks.
	Now func() time.Time
}

// ServerContext holds what MCP tools share: the meetings client and the
// cached Webex sessions.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	meetings *meetings.Client
	creds    meetings.Credentials

	tokens        webexauth.TokenProvider
	oauthSiteName string
	oauthWebExID  string

	metrics *instrumentation.Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]meetings.Session
	shutdown bool
}

// NewServerContext creates a server context. No request is sent until a
// tool asks for a session.
func NewServerContext(ctx context.Context, cfg ServerContextConfig) (*ServerContext, error) {
	if cfg.Meetings == nil {
		return nil, fmt.Errorf("meetings client is required")
	}
	if cfg.Tokens == nil && cfg.Credentials.SiteName == "" {
		return nil, fmt.Errorf("site name is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		meetings:      cfg.Meetings,
		creds:         cfg.Credentials,
		tokens:        cfg.Tokens,
		oauthSiteName: cfg.OAuthSiteName,
		oauthWebExID:  cfg.OAuthWebExID,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		now:           cfg.Now,
		sessions:      make(map[string]meetings.Session),
	}, nil
}

// Context returns the server context, cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Meetings returns the meetings client.
func (sc *ServerContext) Meetings() *meetings.Client {
	return sc.meetings
}

// Metrics returns the metrics recorder, possibly nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SiteName returns the site tools run against.
func (sc *ServerContext) SiteName() string {
	if sc.tokens != nil {
		return sc.oauthSiteName
	}
	return sc.creds.SiteName
}

// Session returns a session for the default account.
func (sc *ServerContext) Session(ctx context.Context) (meetings.Session, error) {
	return sc.SessionForAccount(ctx, webexauth.DefaultAccount)
}

// SessionForAccount returns a usable session for account. In OAuth mode it
// wraps the account's current access token. Otherwise it returns the cached
// ticket session, authenticating again when it is missing or expired.
func (sc *ServerContext) SessionForAccount(ctx context.Context, account string) (meetings.Session, error) {
	if account == "" {
		account = webexauth.DefaultAccount
	}
	if sc.IsShutdown() {
		return meetings.Session{}, ErrShutdown
	}

	if sc.tokens != nil {
		tok, err := sc.tokens.AccessToken(ctx, account)
		if err != nil {
			return meetings.Session{}, fmt.Errorf("no OAuth token for account %s: %w", account, err)
		}
		return meetings.NewTokenSession(sc.oauthSiteName, sc.oauthWebExID, tok, time.Time{}), nil
	}

	if account != webexauth.DefaultAccount {
		return meetings.Session{}, fmt.Errorf("account %s has no credentials, only OAuth mode supports named accounts", account)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	cached, ok := sc.sessions[account]
	if ok && cached.Check(sc.now()) == nil {
		return cached, nil
	}

	s, err := sc.meetings.AuthenticateUser(ctx, sc.creds)
	if err != nil {
		return meetings.Session{}, err
	}
	if !ok {
		sc.metrics.IncrementActiveSessions(ctx)
	} else {
		sc.logger.Info("session renewed", "account", account, "age", sc.now().Sub(cached.CreatedAt()).Round(time.Second))
	}
	sc.sessions[account] = s
	return s, nil
}

// Invalidate drops the cached session of account so the next call
// authenticates again.
func (sc *ServerContext) Invalidate(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, ok := sc.sessions[account]; ok {
		delete(sc.sessions, account)
		sc.metrics.DecrementActiveSessions(sc.ctx)
	}
}

// InvalidateRejected drops the cached ticket session of account when err is
// a FAILURE answer to a call made with s, so the next call authenticates
// again instead of reusing a ticket the service no longer accepts. Token
// sessions are never cached and are left alone. It reports whether a
// session was dropped.
func (sc *ServerContext) InvalidateRejected(account string, s meetings.Session, err error) bool {
	if s.IsToken() || !xmlapi.IsAPIResult(err, xmlapi.ResultFailure) {
		return false
	}
	if account == "" {
		account = webexauth.DefaultAccount
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	cached, ok := sc.sessions[account]
	if !ok || cached.Ticket() != s.Ticket() {
		return false
	}
	delete(sc.sessions, account)
	sc.metrics.DecrementActiveSessions(sc.ctx)
	sc.logger.Info("session dropped after failed call", "account", account, "error", err)
	return true
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown drops all sessions and cancels the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	for account := range sc.sessions {
		sc.metrics.DecrementActiveSessions(context.Background())
		delete(sc.sessions, account)
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
