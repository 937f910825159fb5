package webexauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/teemow/wbxmeet/internal/instrumentation"
)

// TokenProvider supplies a valid access token for an account.
type TokenProvider interface {
	// AccessToken returns a non-expired access token for account.
	AccessToken(ctx context.Context, account string) (string, error)

	// Token returns the same token with its type and expiry, as an
	// oauth2.TokenSource needs it.
	Token(ctx context.Context, account string) (*oauth2.Token, error)
}

// FileTokenProvider serves tokens from a FileStore, refreshing expired ones
// and writing the refreshed token back.
type FileTokenProvider struct {
	store   *FileStore
	conf    *oauth2.Config
	metrics *instrumentation.Metrics
}

// NewFileTokenProvider returns a provider over store. conf may be nil, in
// which case expired tokens cannot be refreshed.
func NewFileTokenProvider(store *FileStore, conf *oauth2.Config) *FileTokenProvider {
	return &FileTokenProvider{store: store, conf: conf}
}

// SetMetrics records token refreshes on m.
func (p *FileTokenProvider) SetMetrics(m *instrumentation.Metrics) {
	p.metrics = m
}

func (p *FileTokenProvider) AccessToken(ctx context.Context, account string) (string, error) {
	tok, err := p.Token(ctx, account)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (p *FileTokenProvider) Token(ctx context.Context, account string) (*oauth2.Token, error) {
	tok, err := p.store.Load(account)
	if err != nil {
		return nil, err
	}
	if tok.Valid() {
		return tok, nil
	}
	if p.conf == nil || tok.RefreshToken == "" {
		p.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultExpired)
		return nil, fmt.Errorf("cached token for account %s expired, run the OAuth login again", account)
	}

	fresh, err := p.conf.TokenSource(ctx, tok).Token()
	if err != nil {
		p.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("failed to refresh token for account %s: %w", account, err)
	}
	p.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)
	if err := p.store.Save(account, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// StaticTokenProvider returns the same token for every account. It serves
// an ACCESS_TOKEN supplied through the environment.
type StaticTokenProvider string

func (s StaticTokenProvider) AccessToken(context.Context, string) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Token returns the static token without an expiry.
func (s StaticTokenProvider) Token(ctx context.Context, account string) (*oauth2.Token, error) {
	tok, err := s.AccessToken(ctx, account)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}
