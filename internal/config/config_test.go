package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnv = []string{
	EnvSiteName, EnvWebExID, EnvPassword, EnvAccessToken, EnvOAuthSiteName, EnvOAuthWebExID,
	EnvClientID, EnvClientSecret, EnvRedirectURL, EnvScopes, EnvEndpoint, EnvHTTPTimeout, EnvTokenDir,
}

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout.Std())
	assert.Equal(t, DefaultRedirectURL, cfg.OAuth.RedirectURL)
	assert.Empty(t, cfg.SiteName)
	assert.Error(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	envFile := writeFile(t, dir, "test.env", `
SITENAME=from-dotenv
WEBEXID=dotenv-user
PASSWORD=dotenv-pass
WEBEX_HTTP_TIMEOUT=5
`)
	yamlFile := writeFile(t, dir, "wbxmeet.yaml", `
site_name: from-yaml
webex_id: yaml-user
http_timeout: 30s
oauth:
  client_id: yaml-client
  scopes: [all_read]
`)
	t.Setenv(EnvSiteName, "from-env")

	cfg, err := Load(Options{EnvFile: envFile, ConfigFile: yamlFile})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.SiteName, "environment beats YAML")
	assert.Equal(t, "yaml-user", cfg.WebExID, "YAML beats .env")
	assert.Equal(t, "dotenv-pass", cfg.Password, ".env fills what nothing else sets")
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout.Std())
	assert.Equal(t, "yaml-client", cfg.OAuth.ClientID)
	assert.Equal(t, []string{"all_read"}, cfg.OAuth.Scopes)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv(EnvSiteName, "acme")
	t.Setenv(EnvWebExID, "bob")
	t.Setenv(EnvAccessToken, "tok")
	t.Setenv(EnvClientID, "id")
	t.Setenv(EnvClientSecret, "secret")
	t.Setenv(EnvScopes, "all_read,meeting_modify")
	t.Setenv(EnvEndpoint, "http://localhost:9999/xml")
	t.Setenv(EnvHTTPTimeout, "0")
	t.Setenv(EnvOAuthWebExID, "bob@acme.com")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.AccessToken)
	assert.Equal(t, "id", cfg.OAuth.ClientID)
	assert.Equal(t, "secret", cfg.OAuth.ClientSecret)
	assert.Equal(t, []string{"all_read", "meeting_modify"}, cfg.OAuth.Scopes)
	assert.Equal(t, "http://localhost:9999/xml", cfg.Endpoint)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout.Std())
	assert.Equal(t, "acme", cfg.OAuthSiteName())
	assert.Equal(t, "bob@acme.com", cfg.OAuthWebExID())
}

func TestLoad_DefaultEnvFileInWorkingDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, DefaultEnvFile, "SITENAME=acme\nWEBEXID=bob\n")
	t.Chdir(dir)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.SiteName)
	assert.Equal(t, "bob", cfg.WebExID)

	_, isSet := os.LookupEnv(EnvSiteName)
	assert.False(t, isSet, "the env file must not leak into the process environment")
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	assert.Error(t, err, "an explicit env file must exist")

	_, err = Load(Options{EnvFile: writeFile(t, dir, "ok.env", ""), ConfigFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "http_timeout: soon\n")
	_, err = Load(Options{EnvFile: writeFile(t, dir, "ok2.env", ""), ConfigFile: bad})
	assert.Error(t, err)

	t.Setenv(EnvHTTPTimeout, "later")
	_, err = Load(Options{EnvFile: writeFile(t, dir, "ok3.env", "")})
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"60", time.Minute, false},
		{"0", 0, false},
		{"1m30s", 90 * time.Second, false},
		{" 10s ", 10 * time.Second, false},
		{"never", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.SiteName = "acme"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvWebExID)

	cfg.WebExID = "bob"
	assert.NoError(t, cfg.Validate())

	cfg.HTTPTimeout = Duration(-time.Second)
	assert.Error(t, cfg.Validate())
}
