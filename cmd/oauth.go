package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/wbxmeet/internal/instrumentation"
	"github.com/teemow/wbxmeet/internal/server"
	"github.com/teemow/wbxmeet/internal/webexauth"
)

func newOAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "Obtain and manage cached OAuth tokens",
		Long: `Webex OAuth integrations authorize through the browser. "oauth serve"
runs the login web app that receives the callback and caches the token;
afterwards every command accepts --oauth to use it.

The integration is configured with CLIENT_ID, CLIENT_SECRET and
REDIRECT_URL. The redirect URL must point at the /authorize route of the
web app.`,
	}

	cmd.AddCommand(newOAuthServeCmd())
	cmd.AddCommand(newOAuthStatusCmd())
	cmd.AddCommand(newOAuthLogoutCmd())
	return cmd
}

func newOAuthServeCmd() *cobra.Command {
	var (
		addr        string
		certFile    string
		keyFile     string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the OAuth login web app",
		Long: `Serve /login, /authorize and /GetUser. Open /login in a browser to sign
in; the token is cached under --account and /GetUser shows the result of a
GetUser call made with it.

--cert and --key serve HTTPS, which the default redirect URL
(https://localhost:5000/authorize) requires. --metrics-addr serves
Prometheus metrics on a separate address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOAuthServe(commandContext(cmd), addr, certFile, keyFile, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultOAuthAddr, "Listen address")
	cmd.Flags().StringVar(&certFile, "cert", "", "TLS certificate file (PEM)")
	cmd.Flags().StringVar(&keyFile, "key", "", "TLS private key file (PEM)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	return cmd
}

func runOAuthServe(ctx context.Context, addr, certFile, keyFile, metricsAddr string) error {
	if (certFile == "") != (keyFile == "") {
		return errors.New("--cert and --key must be given together")
	}

	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(globals, os.Stderr)
	if err != nil {
		return err
	}
	if err := a.validateOAuthIdentity(); err != nil {
		return err
	}
	oauthCfg := a.oauthConfig()
	if err := oauthCfg.Validate(); err != nil {
		return fmt.Errorf("%w: set CLIENT_ID and CLIENT_SECRET", err)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			a.logger.Warn("instrumentation shutdown failed", "error", err)
		}
	}()
	a.useInstrumentation(provider, instrConfig.Audit)

	flow, err := webexauth.NewFlow(oauthCfg, webexauth.NewFlowStore(webexauth.DefaultStateTTL, a.logger), a.logger)
	if err != nil {
		return err
	}
	store, err := a.tokenStore()
	if err != nil {
		return err
	}

	// the callback app always calls the service with the cached token
	a.opts.useOAuth = true
	client, err := a.meetingsClient("oauth")
	if err != nil {
		return err
	}

	oauthApp, err := server.NewOAuthApp(server.OAuthAppConfig{
		Flow:     flow,
		Store:    store,
		Meetings: client,
		Account:  a.opts.account,
		SiteName: a.cfg.OAuthSiteName(),
		WebExID:  a.cfg.OAuthWebExID(),
		Metrics:  a.metrics,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	scheme := "http"
	if certFile != "" {
		scheme = "https"
	} else if redirect := flow.OAuth2().RedirectURL; strings.HasPrefix(redirect, "https://") {
		a.logger.Warn("redirect URL uses https but no certificate is configured", "redirect_url", redirect)
	}

	errCh := make(chan error, 2)

	var metricsServer *server.MetricsServer
	if metricsAddr != "" {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:     metricsAddr,
			Provider: provider,
			Logger:   a.logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server failed: %w", err)
			}
		}()
	}

	go func() {
		if err := oauthApp.Start(addr, certFile, keyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Fprintf(os.Stderr, "Open %s://%s/login in your browser to sign in to Webex.\n", scheme, addr)

	var runErr error
	select {
	case <-shutdownCtx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	stopCtx, stop := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer stop()
	if err := oauthApp.Shutdown(stopCtx); err != nil {
		a.logger.Warn("OAuth app shutdown failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			a.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}
	return runErr
}

func newOAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether an OAuth token is cached for --account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globals, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := a.tokenStore()
			if err != nil {
				return err
			}
			return printTokenStatus(cmd, store, a.opts.account, time.Now())
		},
	}
}

func printTokenStatus(cmd *cobra.Command, store *webexauth.FileStore, account string, now time.Time) error {
	out := cmd.OutOrStdout()
	tok, err := store.Load(account)
	if errors.Is(err, webexauth.ErrNoToken) {
		fmt.Fprintf(out, "Account %s: no token cached\n", account)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Account %s: token cached in %s\n", account, store.Path(account))
	switch {
	case tok.Expiry.IsZero():
		fmt.Fprintln(out, "Expires:  never")
	case tok.Expiry.Before(now):
		fmt.Fprintf(out, "Expired:  %s\n", tok.Expiry.Format(time.RFC3339))
	default:
		fmt.Fprintf(out, "Expires:  %s (in %s)\n", tok.Expiry.Format(time.RFC3339), tok.Expiry.Sub(now).Round(time.Second))
	}
	if tok.RefreshToken != "" {
		fmt.Fprintln(out, "Refresh:  available")
	} else {
		fmt.Fprintln(out, "Refresh:  not available")
	}
	return nil
}

func newOAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the cached OAuth token of --account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globals, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := a.tokenStore()
			if err != nil {
				return err
			}
			if !store.Has(a.opts.account) {
				fmt.Fprintf(cmd.OutOrStdout(), "Account %s: no token cached\n", a.opts.account)
				return nil
			}
			if err := store.Delete(a.opts.account); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s: token deleted\n", a.opts.account)
			return nil
		},
	}
}
