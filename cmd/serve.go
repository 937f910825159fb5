package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/wbxmeet/internal/instrumentation"
	"github.com/teemow/wbxmeet/internal/resources"
	"github.com/teemow/wbxmeet/internal/server"
	"github.com/teemow/wbxmeet/internal/tools/meeting_tools"
)

func newServeCmd() *cobra.Command {
	var (
		yolo        bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on standard input/output to
provide Webex meeting tools for AI assistants.

Safety Mode:
  By default, the server operates in read-only mode (user, list and get).
  Use --yolo to enable write operations (create and delete meetings).

Authentication:
  Without --oauth the server authenticates with PASSWORD or ACCESS_TOKEN
  on the first tool call and renews the session ticket when it expires.
  With --oauth every call uses the cached OAuth token of the account the
  tool names, refreshed automatically when CLIENT_ID and CLIENT_SECRET
  are set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd), yolo, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (create and delete meetings). Default is read-only mode.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090. Can also use METRICS_ADDR env var.")
	return cmd
}

func runServe(ctx context.Context, yolo bool, metricsAddr string) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if metricsAddr == "" {
		metricsAddr = os.Getenv("METRICS_ADDR")
	}

	// stdout carries the MCP protocol, everything else goes to stderr
	a, err := newApp(globals, os.Stderr)
	if err != nil {
		return err
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

	serverContext, err := newServerContext(shutdownCtx, a)
	if err != nil {
		return err
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			a.logger.Warn("server context shutdown failed", "error", err)
		}
	}()

	if metricsAddr != "" && provider.Enabled() {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:     metricsAddr,
			Provider: provider,
			Logger:   a.logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			if err := metricsServer.Shutdown(stopCtx); err != nil {
				a.logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	mcpSrv := newMCPServer()

	// readOnly is the inverse of yolo
	readOnly := !yolo
	if readOnly {
		a.logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		a.logger.Info("starting server with write operations enabled")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}
	return runStdioServer(mcpSrv)
}

// newServerContext builds the MCP server context from the app: token
// sessions with --oauth, otherwise ticket sessions from the credentials.
func newServerContext(ctx context.Context, a *app) (*server.ServerContext, error) {
	client, err := a.meetingsClient("mcp")
	if err != nil {
		return nil, err
	}
	cfg := server.ServerContextConfig{
		Meetings: client,
		Metrics:  a.metrics,
		Logger:   a.logger,
	}

	if a.opts.useOAuth {
		if err := a.validateOAuthIdentity(); err != nil {
			return nil, err
		}
		tokens, err := a.tokenProvider()
		if err != nil {
			return nil, err
		}
		cfg.Tokens = tokens
		cfg.OAuthSiteName = a.cfg.OAuthSiteName()
		cfg.OAuthWebExID = a.cfg.OAuthWebExID()
	} else {
		creds, err := a.credentials(ctx)
		if err != nil {
			return nil, err
		}
		cfg.Credentials = creds
	}

	serverContext, err := server.NewServerContext(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return serverContext, nil
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("wbxmeet", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Meeting tools",
			register: func() error {
				return meeting_tools.RegisterMeetingTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "User Resources",
			register: func() error {
				return resources.RegisterUserResources(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
