// Package schema manages JSON schemas for per-platform access-item
// configuration and validates candidate documents against them.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/invopop/jsonschema"
)

// Registry stores configuration schemas keyed by platform and access-item
// type, using in-memory storage.
type Registry struct {
	schemas    map[string]string
	mu         sync.RWMutex
	strictMode bool
	reflector  *jsonschema.Reflector
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithStrictMode toggles additionalProperties rejection on generated schemas.
func WithStrictMode(strict bool) RegistryOption {
	return func(r *Registry) {
		r.strictMode = strict
	}
}

// NewRegistry creates a new configuration schema registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:    make(map[string]string),
		reflector:  new(jsonschema.Reflector),
		strictMode: true,
	}

	r.reflector.ExpandedStruct = true
	// The reflector closes structs on its own; strictness is decided here,
	// not by the reflector default.
	r.reflector.AllowAdditionalProperties = true

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func key(platformKey string, t manifest.AccessItemType) string {
	return platformKey + "/" + string(t)
}

// Register adds a schema for one platform's access-item type.
// model can be a Go struct (to generate a schema via reflection), a raw JSON
// schema string, a map, or pre-marshaled JSON bytes.
func (r *Registry) Register(platformKey string, t manifest.AccessItemType, model any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(platformKey, t)
	if _, exists := r.schemas[k]; exists {
		return fmt.Errorf("schema already registered: %s", k)
	}

	var schemaStr string

	switch v := model.(type) {
	case string:
		schemaStr = v
	case []byte:
		schemaStr = string(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal schema map: %w", err)
		}
		schemaStr = string(b)
	default:
		s := r.reflector.Reflect(model)
		if r.strictMode {
			s.AdditionalProperties = jsonschema.FalseSchema
		}
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal generated schema: %w", err)
		}
		schemaStr = string(b)
	}

	r.schemas[k] = schemaStr
	return nil
}

// GetSchema retrieves the JSON schema for one platform's access-item type.
func (r *Registry) GetSchema(platformKey string, t manifest.AccessItemType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[key(platformKey, t)]
	return s, ok
}

// List returns all registered schema keys.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		keys = append(keys, k)
	}
	return keys
}
