package webexauth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
)

// Flow runs the authorization code grant with PKCE.
type Flow struct {
	conf   *oauth2.Config
	store  *FlowStore
	logger *slog.Logger
}

// NewFlow returns a Flow for cfg. Pending states are kept in store.
func NewFlow(cfg Config, store *FlowStore, logger *slog.Logger) (*Flow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = NewFlowStore(0, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{conf: cfg.OAuth2(), store: store, logger: logger}, nil
}

// OAuth2 returns the underlying client configuration.
func (f *Flow) OAuth2() *oauth2.Config {
	return f.conf
}

// Begin starts an authorization and returns the URL to send the user to.
func (f *Flow) Begin() (string, error) {
	verifier := oauth2.GenerateVerifier()
	state, err := f.store.Save(verifier)
	if err != nil {
		return "", err
	}
	return f.conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// Complete checks state and exchanges code for a token. Token endpoint
// failures are returned as *ExchangeError.
func (f *Flow) Complete(ctx context.Context, state, code string) (*oauth2.Token, error) {
	verifier, err := f.store.Consume(state)
	if err != nil {
		return nil, fmt.Errorf("invalid callback: %w", err)
	}
	if code == "" {
		return nil, &ExchangeError{Code: "invalid_request", Description: "authorization code missing"}
	}

	tok, err := f.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, newExchangeError(err)
	}
	f.logger.Info("authorization code exchanged", "expires_at", tok.Expiry)
	return tok, nil
}
