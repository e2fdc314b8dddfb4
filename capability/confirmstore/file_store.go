// Package confirmstore provides file-based persistence for operator PAM
// confirmations.
package confirmstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/accessplane/access-host-sdk/capability"
	"github.com/goccy/go-yaml"
)

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:     filepath.Join(os.Getenv("HOME"), ".accessplane", "confirmations.yaml"),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the confirmations file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the file permissions for the confirmations file.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the directory permissions for the store directory.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore persists operator confirmations keyed by platform.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load retrieves all persisted confirmations.
func (s *FileStore) Load() (map[string]capability.Confirmation, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		return map[string]capability.Confirmation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmation store: %w", err)
	}

	var confirmations map[string]capability.Confirmation
	if err := yaml.Unmarshal(data, &confirmations); err != nil {
		return nil, fmt.Errorf("failed to parse confirmation store: %w", err)
	}
	if confirmations == nil {
		confirmations = map[string]capability.Confirmation{}
	}
	return confirmations, nil
}

// Save persists the confirmations.
func (s *FileStore) Save(confirmations map[string]capability.Confirmation) error {
	if confirmations == nil {
		confirmations = map[string]capability.Confirmation{}
	}

	data, err := yaml.Marshal(confirmations)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmations: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create confirmation store directory: %w", err)
	}

	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write confirmation store: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the backing store.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}
