package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/wbxmeet/internal/config"
	"github.com/teemow/wbxmeet/internal/meetings"
	"github.com/teemow/wbxmeet/internal/server"
	"github.com/teemow/wbxmeet/internal/webexauth"
	"github.com/teemow/wbxmeet/internal/xmlapi"
)

func newDocsServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), server.ServerContextConfig{
		Meetings:      meetings.NewClient(xmlapi.NewClient()),
		Tokens:        webexauth.StaticTokenProvider("tok"),
		OAuthSiteName: "acme",
		OAuthWebExID:  "bob",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func toolNames(t *testing.T, readOnly bool) []string {
	t.Helper()
	mcpSrv := newMCPServer()
	require.NoError(t, registerAllTools(mcpSrv, newDocsServerContext(t), readOnly))

	var names []string
	for name := range mcpSrv.ListTools() {
		names = append(names, name)
	}
	return names
}

func TestRegisterAllTools(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"webex_get_user", "webex_list_meetings", "webex_get_meeting",
	}, toolNames(t, true))

	assert.ElementsMatch(t, []string{
		"webex_get_user", "webex_list_meetings", "webex_get_meeting",
		"webex_create_meeting", "webex_delete_meeting",
	}, toolNames(t, false))
}

func TestNewServerContext_Password(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvSiteName, "acme")
	t.Setenv(config.EnvWebExID, "bob")
	t.Setenv(config.EnvPassword, "secret")

	a, err := newApp(globalOptions{}, &bytes.Buffer{})
	require.NoError(t, err)

	sc, err := newServerContext(context.Background(), a)
	require.NoError(t, err)
	defer sc.Shutdown()
	assert.Equal(t, "acme", sc.SiteName())
}

func TestNewServerContext_OAuth(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvSiteName, "acme")
	t.Setenv(config.EnvOAuthSiteName, "acme-oauth")
	t.Setenv(config.EnvWebExID, "bob")

	a, err := newApp(globalOptions{useOAuth: true}, &bytes.Buffer{})
	require.NoError(t, err)

	sc, err := newServerContext(context.Background(), a)
	require.NoError(t, err)
	defer sc.Shutdown()
	assert.Equal(t, "acme-oauth", sc.SiteName())

	// no token cached yet, so no session either
	_, err = sc.Session(context.Background())
	assert.ErrorIs(t, err, webexauth.ErrNoToken)
}

func TestNewServerContext_MissingConfig(t *testing.T) {
	isolateEnv(t)

	a, err := newApp(globalOptions{}, &bytes.Buffer{})
	require.NoError(t, err)

	_, err = newServerContext(context.Background(), a)
	assert.EqualError(t, err, "missing configuration: SITENAME, WEBEXID")
}
