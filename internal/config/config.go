package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/teemow/wbxmeet/internal/webexauth"
)

// DefaultEnvFile is read from the working directory when no env file is
// given. A missing default file is not an error.
const DefaultEnvFile = ".env"

// DefaultHTTPTimeout bounds each XML API request. Zero disables it.
const DefaultHTTPTimeout = 60 * time.Second

// Environment variables.
const (
	EnvSiteName      = "SITENAME"
	EnvWebExID       = "WEBEXID"
	EnvPassword      = "PASSWORD"
	EnvAccessToken   = "ACCESS_TOKEN"
	EnvOAuthSiteName = "SITENAME_OAUTH"
	EnvOAuthWebExID  = "WEBEXID_OAUTH"
	EnvClientID      = "CLIENT_ID"
	EnvClientSecret  = "CLIENT_SECRET"
	EnvRedirectURL   = "REDIRECT_URL"
	EnvScopes        = "OAUTH_SCOPES"
	EnvEndpoint      = "WEBEX_XML_ENDPOINT"
	EnvHTTPTimeout   = "WEBEX_HTTP_TIMEOUT"
	EnvTokenDir      = "WBXMEET_TOKEN_DIR"
)

// DefaultRedirectURL matches the callback served by "oauth serve".
const DefaultRedirectURL = "https://localhost:5000/authorize"

// Config is the resolved configuration.
type Config struct {
	SiteName    string `yaml:"site_name"`
	WebExID     string `yaml:"webex_id"`
	Password    string `yaml:"password"`
	AccessToken string `yaml:"access_token"`

	OAuth OAuthConfig `yaml:"oauth"`

	// Endpoint overrides the XML API URL when set.
	Endpoint    string   `yaml:"endpoint"`
	HTTPTimeout Duration `yaml:"http_timeout"`
	// TokenDir overrides where OAuth tokens are cached.
	TokenDir string `yaml:"token_dir"`
}

// OAuthConfig is the Webex integration used by the OAuth web app. SiteName
// and WebExID fall back to the top-level values.
type OAuthConfig struct {
	SiteName     string   `yaml:"site_name"`
	WebExID      string   `yaml:"webex_id"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

// Duration reads "90s" style durations, or plain integers as seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// Options select the files Load reads.
type Options struct {
	// EnvFile is a dotenv file. Empty means DefaultEnvFile, which may be
	// absent; an explicitly named file must exist.
	EnvFile string
	// ConfigFile is an optional YAML settings file.
	ConfigFile string
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		HTTPTimeout: Duration(DefaultHTTPTimeout),
		OAuth:       OAuthConfig{RedirectURL: DefaultRedirectURL},
	}
}

// Load resolves the configuration from opts and the process environment.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.apply(lookupMap(dotenv)); err != nil {
		return nil, fmt.Errorf("invalid value in env file: %w", err)
	}

	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", opts.ConfigFile, err)
		}
	}

	if err := cfg.apply(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// apply overrides fields for every variable lookup finds.
func (c *Config) apply(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvSiteName:      &c.SiteName,
		EnvWebExID:       &c.WebExID,
		EnvPassword:      &c.Password,
		EnvAccessToken:   &c.AccessToken,
		EnvOAuthSiteName: &c.OAuth.SiteName,
		EnvOAuthWebExID:  &c.OAuth.WebExID,
		EnvClientID:      &c.OAuth.ClientID,
		EnvClientSecret:  &c.OAuth.ClientSecret,
		EnvRedirectURL:   &c.OAuth.RedirectURL,
		EnvEndpoint:      &c.Endpoint,
		EnvTokenDir:      &c.TokenDir,
	}
	for key, field := range strs {
		if v, ok := lookup(key); ok {
			*field = v
		}
	}

	if v, ok := lookup(EnvScopes); ok {
		c.OAuth.Scopes = webexauth.ParseScopes(v)
	}
	if v, ok := lookup(EnvHTTPTimeout); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPTimeout, err)
		}
		c.HTTPTimeout = Duration(d)
	}
	return nil
}

// OAuthSiteName returns the site used with OAuth tokens.
func (c *Config) OAuthSiteName() string {
	if c.OAuth.SiteName != "" {
		return c.OAuth.SiteName
	}
	return c.SiteName
}

// OAuthWebExID returns the user used with OAuth tokens. For OAuth sites it
// usually includes the email domain.
func (c *Config) OAuthWebExID() string {
	if c.OAuth.WebExID != "" {
		return c.OAuth.WebExID
	}
	return c.WebExID
}

// Validate checks that a site and user are known and the timeout is usable.
func (c *Config) Validate() error {
	var missing []string
	if c.SiteName == "" {
		missing = append(missing, EnvSiteName)
	}
	if c.WebExID == "" {
		missing = append(missing, EnvWebExID)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%s must not be negative", EnvHTTPTimeout)
	}
	return nil
}
