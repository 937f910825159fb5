package xmlapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// DefaultEndpoint is the public Webex Meetings XML service.
const DefaultEndpoint = "https://api.webex.com/WBXService/XMLService"

// maxResponseBody caps how much of a response is read into memory.
const maxResponseBody = 16 << 20

// Doer sends HTTP requests. *http.Client and the client returned by
// oauth2.NewClient both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RawResponse is an HTTP response read to completion.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport posts envelopes to one endpoint.
type Transport struct {
	endpoint string
	client   Doer
}

// NewTransport returns a Transport. An empty endpoint selects
// DefaultEndpoint and a nil client http.DefaultClient.
func NewTransport(endpoint string, client Doer) *Transport {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Transport{endpoint: endpoint, client: client}
}

// Endpoint returns the URL requests are posted to.
func (t *Transport) Endpoint() string {
	return t.endpoint
}

// Post sends body as application/xml. The response is returned even when
// its status is outside 200-299; the error is then a *TransportError.
func (t *Transport) Post(ctx context.Context, body []byte) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post to %s: %w", t.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	raw := &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}
	if err := checkStatus(raw); err != nil {
		return raw, err
	}
	return raw, nil
}

func checkStatus(resp *RawResponse) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return nil
}
