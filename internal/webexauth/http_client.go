package webexauth

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

type accountKey struct{}

// WithAccount returns ctx naming the account whose token requests made
// with it carry.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the account set by WithAccount, or "".
func AccountFromContext(ctx context.Context) string {
	account, _ := ctx.Value(accountKey{}).(string)
	return account
}

// TokenSource adapts the tokens of one account to oauth2.TokenSource.
func TokenSource(ctx context.Context, tokens TokenProvider, account string) oauth2.TokenSource {
	return &providerSource{ctx: ctx, tokens: tokens, account: account}
}

type providerSource struct {
	ctx     context.Context
	tokens  TokenProvider
	account string
}

func (s *providerSource) Token() (*oauth2.Token, error) {
	return s.tokens.Token(s.ctx, s.account)
}

// BearerClient sends requests with an Authorization: Bearer header for the
// account named in the request context, falling back to a fixed account.
// It keeps one oauth2 client per account so each reuses its token until it
// expires.
type BearerClient struct {
	tokens   TokenProvider
	base     *http.Client
	fallback string

	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewBearerClient returns a client over base. A nil base uses
// http.DefaultClient. An empty fallback is DefaultAccount.
func NewBearerClient(tokens TokenProvider, base *http.Client, fallback string) *BearerClient {
	if base == nil {
		base = http.DefaultClient
	}
	if fallback == "" {
		fallback = DefaultAccount
	}
	return &BearerClient{
		tokens:   tokens,
		base:     base,
		fallback: fallback,
		clients:  make(map[string]*http.Client),
	}
}

func (c *BearerClient) Do(req *http.Request) (*http.Response, error) {
	account := AccountFromContext(req.Context())
	if account == "" {
		account = c.fallback
	}
	return c.client(account).Do(req)
}

func (c *BearerClient) client(account string) *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hc, ok := c.clients[account]; ok {
		return hc
	}
	// refreshes go through the base client as well
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	hc := oauth2.NewClient(ctx, TokenSource(ctx, c.tokens, account))
	hc.Timeout = c.base.Timeout
	c.clients[account] = hc
	return hc
}
