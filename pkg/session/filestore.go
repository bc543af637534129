package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultCredentialsFile is the default name of the credentials file.
const DefaultCredentialsFile = "credentials.yaml"

// credentialsFile is the on-disk format. The two token slots are the only
// contents; they are written and removed together.
type credentialsFile struct {
	AccessToken  string `yaml:"access_token,omitempty"`
	RefreshToken string `yaml:"refresh_token,omitempty"`
}

// FileStore persists the session to a YAML file so a restart does not force a
// fresh login. Safe for concurrent use within one process; it does not
// coordinate writes across processes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// DefaultCredentialsPath returns the default location of the credentials file.
// It uses the OS-specific config directory (e.g. ~/.config/arena on Linux).
func DefaultCredentialsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "arena", DefaultCredentialsFile), nil
}

// NewFileStore creates a store backed by the given file. If path is empty the
// default credentials path is used. The file is created on first Set.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		path, err = DefaultCredentialsPath()
		if err != nil {
			return nil, err
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the file the store reads and writes.
func (f *FileStore) Path() string {
	return f.path
}

// Get reads the session from disk. A missing file means logged out.
func (f *FileStore) Get() (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("unable to read credentials file: %w", err)
	}

	var c credentialsFile
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Session{}, fmt.Errorf("unable to parse credentials file: %w", err)
	}

	sess := Session{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken}
	if !sess.Valid() {
		// Half a pair is as good as none.
		return Session{}, nil
	}
	return sess, nil
}

// Set writes the session to disk, creating parent directories as needed.
// The file is written with owner-only permissions since it holds credentials.
func (f *FileStore) Set(s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := yaml.Marshal(credentialsFile{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// Clear removes the credentials file. Clearing when no file exists is a no-op.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}
