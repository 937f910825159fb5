package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/teemow/wbxmeet/internal/config"
	"github.com/teemow/wbxmeet/internal/instrumentation"
	"github.com/teemow/wbxmeet/internal/logging"
	"github.com/teemow/wbxmeet/internal/meetings"
	"github.com/teemow/wbxmeet/internal/webexauth"
	"github.com/teemow/wbxmeet/internal/xmlapi"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	envFile    string
	debug      bool
	endpoint   string
	account    string
	useOAuth   bool
}

var globals globalOptions

func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&globals.configFile, "config", "", "YAML settings file")
	f.StringVar(&globals.envFile, "env-file", "", "dotenv file (default: .env in the working directory, if present)")
	f.BoolVar(&globals.debug, "debug", false, "Enable debug logging and print every XML envelope with credentials masked")
	f.StringVar(&globals.endpoint, "endpoint", "", "XML API endpoint (default: WEBEX_XML_ENDPOINT or the public service)")
	f.StringVar(&globals.account, "account", webexauth.DefaultAccount, "Name of the cached OAuth token to use")
	f.BoolVar(&globals.useOAuth, "oauth", false, "Authenticate with the cached OAuth token instead of PASSWORD or ACCESS_TOKEN")
}

// app is what commands build from the global flags and the loaded
// configuration.
type app struct {
	opts    globalOptions
	cfg     *config.Config
	logger  *slog.Logger
	stderr  io.Writer
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
}

// newApp loads the configuration. Flags override the environment, which
// overrides the YAML file, which overrides the env file.
func newApp(opts globalOptions, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(config.Options{EnvFile: opts.envFile, ConfigFile: opts.configFile})
	if err != nil {
		return nil, err
	}
	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}

	logger := logging.New(stderr, logging.Options{Debug: opts.debug})
	return &app{
		opts:   opts,
		cfg:    cfg,
		logger: logger,
		stderr: stderr,
		audit:  instrumentation.NewAuditLogger(logger, instrumentation.DefaultConfig().Audit),
	}, nil
}

// useInstrumentation records metrics and audit records through provider.
func (a *app) useInstrumentation(provider *instrumentation.Provider, audit instrumentation.AuditConfig) {
	a.metrics = provider.Metrics()
	a.audit = instrumentation.NewAuditLogger(a.logger, audit)
}

// httpClient returns the Doer XML requests go through. With --oauth it adds
// the cached token of --account as a bearer token.
func (a *app) httpClient() (xmlapi.Doer, error) {
	base := &http.Client{Timeout: a.cfg.HTTPTimeout.Std()}
	if !a.opts.useOAuth {
		return base, nil
	}
	tokens, err := a.tokenProvider()
	if err != nil {
		return nil, err
	}
	return webexauth.NewBearerClient(tokens, base, a.opts.account), nil
}

func (a *app) xmlClient() (*xmlapi.Client, error) {
	doer, err := a.httpClient()
	if err != nil {
		return nil, err
	}
	opts := []xmlapi.Option{
		xmlapi.WithEndpoint(a.cfg.Endpoint),
		xmlapi.WithHTTPClient(doer),
		xmlapi.WithLogger(a.logger),
		xmlapi.WithMetrics(a.metrics),
	}
	if a.opts.debug {
		opts = append(opts, xmlapi.WithDebug(a.stderr))
	}
	return xmlapi.NewClient(opts...), nil
}

// meetingsClient returns a client whose changes are audited as source.
func (a *app) meetingsClient(source string) (*meetings.Client, error) {
	api, err := a.xmlClient()
	if err != nil {
		return nil, err
	}
	return meetings.NewClient(api,
		meetings.WithLogger(a.logger),
		meetings.WithAudit(a.audit, source),
	), nil
}

func (a *app) oauthConfig() webexauth.Config {
	return webexauth.Config{
		ClientID:     a.cfg.OAuth.ClientID,
		ClientSecret: a.cfg.OAuth.ClientSecret,
		RedirectURL:  a.cfg.OAuth.RedirectURL,
		Scopes:       a.cfg.OAuth.Scopes,
	}
}

func (a *app) tokenStore() (*webexauth.FileStore, error) {
	store, err := webexauth.NewFileStore(a.cfg.TokenDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}
	return store, nil
}

// tokenProvider serves the cached OAuth tokens, refreshing expired ones
// when the integration is configured.
func (a *app) tokenProvider() (*webexauth.FileTokenProvider, error) {
	store, err := a.tokenStore()
	if err != nil {
		return nil, err
	}
	p := webexauth.NewFileTokenProvider(store, a.oauthConfig().OAuth2())
	p.SetMetrics(a.metrics)
	return p, nil
}

// validateOAuthIdentity checks the site and user OAuth tokens are used with.
func (a *app) validateOAuthIdentity() error {
	if a.cfg.OAuthSiteName() == "" || a.cfg.OAuthWebExID() == "" {
		return fmt.Errorf("missing configuration: %s (or %s) and %s (or %s)",
			config.EnvOAuthSiteName, config.EnvSiteName, config.EnvOAuthWebExID, config.EnvWebExID)
	}
	return nil
}

// credentials resolves what AuthenticateUser is called with: the cached
// OAuth token with --oauth, otherwise PASSWORD or ACCESS_TOKEN.
func (a *app) credentials(ctx context.Context) (meetings.Credentials, error) {
	if a.opts.useOAuth {
		if err := a.validateOAuthIdentity(); err != nil {
			return meetings.Credentials{}, err
		}
		tokens, err := a.tokenProvider()
		if err != nil {
			return meetings.Credentials{}, err
		}
		tok, err := tokens.AccessToken(ctx, a.opts.account)
		if err != nil {
			return meetings.Credentials{}, fmt.Errorf("no usable OAuth token for account %s, log in with \"wbxmeet oauth serve\" first: %w", a.opts.account, err)
		}
		return meetings.Credentials{
			SiteName:    a.cfg.OAuthSiteName(),
			WebExID:     a.cfg.OAuthWebExID(),
			AccessToken: tok,
		}, nil
	}

	if err := a.cfg.Validate(); err != nil {
		return meetings.Credentials{}, err
	}
	if a.cfg.Password == "" && a.cfg.AccessToken == "" {
		return meetings.Credentials{}, fmt.Errorf("missing configuration: %s or %s", config.EnvPassword, config.EnvAccessToken)
	}
	return meetings.Credentials{
		SiteName:    a.cfg.SiteName,
		WebExID:     a.cfg.WebExID,
		Password:    a.cfg.Password,
		AccessToken: a.cfg.AccessToken,
	}, nil
}

// authenticate opens a ticket session on client.
func (a *app) authenticate(ctx context.Context, client *meetings.Client) (meetings.Session, error) {
	creds, err := a.credentials(ctx)
	if err != nil {
		return meetings.Session{}, err
	}
	return client.AuthenticateUser(ctx, creds)
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
