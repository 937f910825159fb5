package webexauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
)

// DefaultAccount is used when no account name is given.
const DefaultAccount = "default"

// ErrNoToken is returned when no token is cached for an account.
var ErrNoToken = errors.New("no cached Webex OAuth token")

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("account name %q may only contain letters, digits, hyphens and underscores", account)
	}
	return nil
}

// FileStore caches one token file per account in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. An empty dir selects
// wbxmeet under the user cache directory.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate cache directory: %w", err)
		}
		dir = filepath.Join(cache, "wbxmeet")
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the token file of account.
func (s *FileStore) Path(account string) string {
	return filepath.Join(s.dir, "webex-"+account+".token")
}

// Save writes tok for account, readable by the owner only.
func (s *FileStore) Save(account string, tok *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("refusing to cache an empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.Path(account), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Load reads the cached token of account. It returns ErrNoToken when there
// is none.
func (s *FileStore) Load(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(account))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", s.Path(account), err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	return &tok, nil
}

// Has reports whether a token file exists for account.
func (s *FileStore) Has(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.Path(account))
	return err == nil
}

// Delete removes the token of account. Deleting a missing token is not an
// error.
func (s *FileStore) Delete(account string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.Remove(s.Path(account)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}
