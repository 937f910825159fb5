package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/wbxmeet/internal/webexauth"
)

func TestPrintTokenStatus(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token *oauth2.Token
		want  []string
	}{
		{
			name: "no token",
			want: []string{"Account default: no token cached\n"},
		},
		{
			name:  "valid with refresh",
			token: &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now.Add(90 * time.Minute)},
			want:  []string{"token cached in", "Expires:  2024-05-01T13:30:00Z (in 1h30m0s)\n", "Refresh:  available\n"},
		},
		{
			name:  "expired",
			token: &oauth2.Token{AccessToken: "a", Expiry: now.Add(-time.Minute)},
			want:  []string{"Expired:  2024-05-01T11:59:00Z\n", "Refresh:  not available\n"},
		},
		{
			name:  "no expiry",
			token: &oauth2.Token{AccessToken: "a"},
			want:  []string{"Expires:  never\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := webexauth.NewFileStore(t.TempDir())
			require.NoError(t, err)
			if tt.token != nil {
				require.NoError(t, store.Save(webexauth.DefaultAccount, tt.token))
			}

			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)

			require.NoError(t, printTokenStatus(cmd, store, webexauth.DefaultAccount, now))
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestOAuthServe_CertAndKeyTogether(t *testing.T) {
	err := runOAuthServe(t.Context(), "localhost:0", "cert.pem", "", "")
	assert.EqualError(t, err, "--cert and --key must be given together")
}

func TestOAuthLogoutCmd(t *testing.T) {
	dir := isolateEnv(t)
	saved := globals
	globals = globalOptions{account: "work"}
	t.Cleanup(func() { globals = saved })

	store, err := webexauth.NewFileStore(filepath.Join(dir, "tokens"))
	require.NoError(t, err)
	require.NoError(t, store.Save("work", &oauth2.Token{AccessToken: "a"}))

	out, err := execute(newOAuthLogoutCmd())
	require.NoError(t, err)
	assert.Equal(t, "Account work: token deleted\n", out)
	assert.False(t, store.Has("work"))

	out, err = execute(newOAuthLogoutCmd())
	require.NoError(t, err)
	assert.Equal(t, "Account work: no token cached\n", out)
}
