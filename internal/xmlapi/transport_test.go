package xmlapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_Post(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = io.WriteString(w, responseXML("SUCCESS", "", ""))
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL, srv.Client())
	resp, err := tr.Post(context.Background(), []byte("<envelope/>"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/xml", gotContentType)
	assert.Equal(t, "<envelope/>", gotBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "SUCCESS")
}

func TestTransport_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "maintenance")
	}))
	defer srv.Close()

	resp, err := NewTransport(srv.URL, srv.Client()).Post(context.Background(), nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Equal(t, "maintenance", te.Body)
	require.NotNil(t, resp, "raw response is returned alongside the error")
	assert.Equal(t, "maintenance", string(resp.Body))
}

func TestTransport_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewTransport(url, nil).Post(context.Background(), nil)
	require.Error(t, err)

	var te *TransportError
	assert.False(t, errors.As(err, &te))
}

func TestTransport_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewTransport(srv.URL, srv.Client()).Post(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewTransport_Defaults(t *testing.T) {
	tr := NewTransport("", nil)
	assert.Equal(t, DefaultEndpoint, tr.Endpoint())
	assert.Equal(t, http.DefaultClient, tr.client)
}
