package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/wbxmeet/internal/instrumentation"
	"github.com/teemow/wbxmeet/internal/meetings"
	"github.com/teemow/wbxmeet/internal/webexauth"
	"github.com/teemow/wbxmeet/internal/xmlapi"
)

// DefaultOAuthAddr matches the redirect URL registered for the integration.
const DefaultOAuthAddr = "localhost:5000"

// OAuthAppConfig configures the OAuth web app.
type OAuthAppConfig struct {
	Flow     *webexauth.Flow
	Store    *webexauth.FileStore
	Meetings *meetings.Client

	// Account names the token file the app writes and reads.
	Account string
	// SiteName and WebExID identify the user GetUser is called for. For
	// OAuth sites the WebEx ID includes the email domain.
	SiteName string
	WebExID  string

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// OAuthApp is the browser-facing login flow: /login starts the
// authorization, /authorize receives the callback and caches the token,
// /GetUser proves the token works by returning the user's XML API record.
type OAuthApp struct {
	flow     *webexauth.Flow
	store    *webexauth.FileStore
	tokens   webexauth.TokenProvider
	meetings *meetings.Client
	account  string
	siteName string
	webExID  string
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
	health   *HealthChecker

	httpServer *http.Server
}

// NewOAuthApp validates cfg and returns an unstarted app.
func NewOAuthApp(cfg OAuthAppConfig) (*OAuthApp, error) {
	if cfg.Flow == nil || cfg.Store == nil || cfg.Meetings == nil {
		return nil, fmt.Errorf("flow, token store and meetings client are required")
	}
	if cfg.SiteName == "" || cfg.WebExID == "" {
		return nil, fmt.Errorf("site name and WebEx ID are required")
	}
	if err := validateHTTPSRequirement(cfg.Flow.OAuth2().RedirectURL); err != nil {
		return nil, fmt.Errorf("invalid redirect URL: %w", err)
	}
	if cfg.Account == "" {
		cfg.Account = webexauth.DefaultAccount
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	tokens := webexauth.NewFileTokenProvider(cfg.Store, cfg.Flow.OAuth2())
	tokens.SetMetrics(cfg.Metrics)

	return &OAuthApp{
		flow:     cfg.Flow,
		store:    cfg.Store,
		tokens:   tokens,
		meetings: cfg.Meetings,
		account:  cfg.Account,
		siteName: cfg.SiteName,
		webExID:  cfg.WebExID,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		health:   NewHealthChecker(nil),
	}, nil
}

// Health returns the app's health checker.
func (a *OAuthApp) Health() *HealthChecker {
	return a.health
}

// Handler returns the app's routes wrapped in tracing.
func (a *OAuthApp) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /login", instrumentHandler(a.metrics, "/login", http.HandlerFunc(a.handleLogin)))
	mux.Handle("GET /authorize", instrumentHandler(a.metrics, "/authorize", http.HandlerFunc(a.handleAuthorize)))
	mux.Handle("GET /GetUser", instrumentHandler(a.metrics, "/GetUser", http.HandlerFunc(a.handleGetUser)))
	a.health.RegisterHealthEndpoints(mux)

	return otelhttp.NewHandler(mux, "oauth",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func (a *OAuthApp) handleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := a.flow.Begin()
	if err != nil {
		a.logger.Error("failed to start authorization", "error", err)
		http.Error(w, "failed to start authorization", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (a *OAuthApp) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if code := q.Get("error"); code != "" {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		a.renderError(w, exchangeErrorPage, code, q.Get("error_description"))
		return
	}

	tok, err := a.flow.Complete(ctx, q.Get("state"), q.Get("code"))
	if err != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		a.logger.Warn("authorization failed", "error", err)

		code, desc := "invalid_state", err.Error()
		var ee *webexauth.ExchangeError
		if errors.As(err, &ee) {
			code, desc = ee.Code, ee.Description
		}
		a.renderError(w, exchangeErrorPage, code, desc)
		return
	}

	if err := a.store.Save(a.account, tok); err != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		a.logger.Error("failed to cache token", "error", err)
		a.renderError(w, exchangeErrorPage, "token_cache", err.Error())
		return
	}

	a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	a.logger.Info("token cached", "account", a.account)
	http.Redirect(w, r, "/GetUser", http.StatusFound)
}

func (a *OAuthApp) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := webexauth.WithAccount(r.Context(), a.account)

	tok, err := a.tokens.AccessToken(ctx, a.account)
	if err != nil {
		a.logger.Info("no usable token, starting login", "error", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	s := meetings.NewTokenSession(a.siteName, a.webExID, tok, time.Time{})
	u, err := a.meetings.GetUser(ctx, s)
	if err != nil {
		result, reason := "ERROR", err.Error()
		var apiErr *xmlapi.APIError
		var te *xmlapi.TransportError
		switch {
		case errors.As(err, &apiErr):
			result, reason = apiErr.Result, apiErr.Reason
		case errors.As(err, &te):
			result, reason = te.Result(), te.Body
		}
		a.renderError(w, apiErrorPage, result, reason)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(u.Document.Indent()))
}

var (
	exchangeErrorPage = template.Must(template.New("exchange").Parse(
		`<p>Error exchanging auth code for access token:</p>
<ul><li>Error: {{.First}}</li><li>Description: {{.Second}}</li></ul>
`))
	apiErrorPage = template.Must(template.New("api").Parse(
		`<p>Error making Webex Meetings API request:</p>
<ul><li>Result: {{.First}}</li><li>Reason: {{.Second}}</li></ul>
`))
)

func (a *OAuthApp) renderError(w http.ResponseWriter, page *template.Template, first, second string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if err := page.Execute(w, struct{ First, Second string }{first, second}); err != nil {
		a.logger.Error("failed to render error page", "error", err)
	}
}

// Start listens on addr and serves until Shutdown. With certFile and keyFile
// set it serves HTTPS.
func (a *OAuthApp) Start(addr, certFile, keyFile string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return a.Serve(ln, certFile, keyFile)
}

// Serve serves on ln. It returns http.ErrServerClosed after Shutdown.
func (a *OAuthApp) Serve(ln net.Listener, certFile, keyFile string) error {
	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	a.logger.Info("starting OAuth app", "addr", ln.Addr().String(), "tls", certFile != "")
	if certFile != "" || keyFile != "" {
		return a.httpServer.ServeTLS(ln, certFile, keyFile)
	}
	return a.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the app.
func (a *OAuthApp) Shutdown(ctx context.Context) error {
	a.health.SetReady(false)
	if a.httpServer != nil {
		return a.httpServer.Shutdown(ctx)
	}
	return nil
}

// validateHTTPSRequirement allows plain HTTP only for loopback hosts.
func validateHTTPSRequirement(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("HTTPS is required outside localhost (got %s)", rawURL)
		}
		return nil
	default:
		return fmt.Errorf("invalid URL scheme %q, must be http (localhost only) or https", u.Scheme)
	}
}
