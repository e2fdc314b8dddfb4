// Package manifeststore loads platform manifests from the local filesystem,
// canonicalizing legacy shapes and selecting the highest manifest version
// when a platform ships several.
package manifeststore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/parser"
	"github.com/goccy/go-yaml"
)

// DirStore reads manifest documents (*.yaml, *.yml, *.json) from a directory.
type DirStore struct {
	dir    string
	json   parser.ManifestParser
	logger *slog.Logger
}

// Option configures a DirStore.
type Option func(*DirStore)

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *DirStore) { s.logger = l }
}

// NewDirStore creates a store over the given directory.
func NewDirStore(dir string, opts ...Option) *DirStore {
	s := &DirStore{
		dir:    dir,
		json:   parser.NewJSONManifestParser(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads every manifest in the directory. When a platform key appears in
// several documents, the highest parsable version wins; the others are
// logged and dropped. Documents that fail to parse or violate manifest
// invariants abort the load; a broken manifest on disk is an authoring bug.
func (s *DirStore) Load() ([]*manifest.Manifest, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest directory %q: %w", s.dir, err)
	}

	byKey := make(map[string][]*manifest.Manifest)
	var order []string

	for _, entry := range entries {
		if entry.IsDir() || !isManifestFile(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		m, err := s.loadFile(path)
		if err != nil {
			return nil, err
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("manifest %q: %w", path, err)
		}
		if _, seen := byKey[m.PlatformKey]; !seen {
			order = append(order, m.PlatformKey)
		}
		byKey[m.PlatformKey] = append(byKey[m.PlatformKey], m)
	}

	out := make([]*manifest.Manifest, 0, len(order))
	for _, key := range order {
		candidates := byKey[key]
		if len(candidates) > 1 {
			s.logger.Warn("multiple manifest versions on disk, selecting highest",
				"platform", key,
				"count", len(candidates))
		}
		out = append(out, pickHighest(candidates))
	}
	return out, nil
}

// loadFile parses one manifest document. YAML documents are converted to
// JSON first so both formats flow through one canonical decode path.
func (s *DirStore) loadFile(path string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert manifest %q: %w", path, err)
		}
	}

	m, err := s.json.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %q: %w", path, err)
	}
	return m, nil
}

func isManifestFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") ||
		strings.HasSuffix(name, ".yml") ||
		strings.HasSuffix(name, ".json")
}

func pickHighest(candidates []*manifest.Manifest) *manifest.Manifest {
	best := candidates[0]
	versions := make([]string, 0, len(candidates))
	for _, m := range candidates {
		versions = append(versions, m.Version)
	}
	if highest, err := ResolveVersion("latest", versions); err == nil {
		for _, m := range candidates {
			if m.Version == highest {
				best = m
				break
			}
		}
	}
	return best
}
