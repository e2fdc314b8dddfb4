// Package registry owns the mapping from platform key to plugin instance.
// It is the composition root other subsystems call instead of importing
// plugins directly; it holds no business rules beyond dispatch.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/plugin"
	"github.com/accessplane/access-host-sdk/schema"
	"github.com/accessplane/access-host-sdk/validation"
	"github.com/bmatcuk/doublestar/v4"
)

// entry binds a registered plugin to the schema registries built from its
// declared configuration models at registration time.
type entry struct {
	plugin          plugin.Plugin
	agencyValidator *schema.Validator
	targetValidator *schema.Validator
}

// Registry is an explicitly constructed plugin registry. Construct one at the
// composition root and pass it to whatever needs plugin lookup; registration
// happens once at process start, queries may run concurrently afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New creates an empty plugin registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a plugin keyed by its manifest's platform key. Registration
// is an idempotent upsert: re-registering a key overwrites the previous
// plugin and logs a warning, supporting hot-reload and test scenarios. The
// only error is a manifest violating its own invariants.
func (r *Registry) Register(p plugin.Plugin) error {
	if p == nil || p.Manifest() == nil {
		return fmt.Errorf("registry: plugin without a manifest cannot be registered")
	}
	m := p.Manifest()
	if err := m.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	e := &entry{plugin: p}
	e.agencyValidator = buildValidator(m, p.AgencyConfigSchema)
	e.targetValidator = buildValidator(m, p.ClientTargetSchema)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.entries[m.PlatformKey]; exists {
		r.logger.Warn("re-registering platform plugin",
			"platform", m.PlatformKey,
			"version", m.Version)
		warnOnDowngrade(r.logger, m.PlatformKey, prev.plugin.Manifest().Version, m.Version)
	}
	r.entries[m.PlatformKey] = e
	return nil
}

// buildValidator collects the plugin's schema models for every supported type
// into a fresh schema registry. Built per registration, so an upsert replaces
// the previous plugin's schemas wholesale.
func buildValidator(m *manifest.Manifest, source func(manifest.AccessItemType) (any, bool)) *schema.Validator {
	reg := schema.NewRegistry()
	for _, meta := range m.SupportedAccessItemTypes {
		if model, ok := source(meta.Type); ok {
			// Duplicate types in a manifest are an authoring bug already
			// caught by manifest validation.
			_ = reg.Register(m.PlatformKey, meta.Type, model)
		}
	}
	return schema.NewValidator(reg)
}

func warnOnDowngrade(logger *slog.Logger, key, prevVersion, nextVersion string) {
	prev, err := semver.NewVersion(prevVersion)
	if err != nil {
		return
	}
	next, err := semver.NewVersion(nextVersion)
	if err != nil {
		return
	}
	if next.LessThan(prev) {
		logger.Warn("manifest version downgrade",
			"platform", key,
			"previous", prevVersion,
			"next", nextVersion)
	}
}

// Get returns the plugin registered for the platform key, with an explicit
// presence flag. It never fails; absence is an expected condition.
func (r *Registry) Get(platformKey string) (plugin.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[platformKey]
	if !ok {
		return nil, false
	}
	return e.plugin, true
}

// PlatformKeys returns every registered platform key, sorted.
func (r *Registry) PlatformKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match returns the sorted platform keys matching a doublestar glob pattern,
// e.g. "google-*". An invalid pattern matches nothing.
func (r *Registry) Match(pattern string) []string {
	var out []string
	for _, k := range r.PlatformKeys() {
		if ok, err := doublestar.Match(pattern, k); err == nil && ok {
			out = append(out, k)
		}
	}
	return out
}

// IsAccessItemTypeSupported reports whether the platform declares the type.
func (r *Registry) IsAccessItemTypeSupported(platformKey string, t manifest.AccessItemType) bool {
	p, ok := r.Get(platformKey)
	if !ok {
		return false
	}
	return p.Manifest().SupportedAccessItemTypes.Contains(t)
}

// SupportedAccessItemTypes returns the platform's declared types, empty when
// the platform is unknown.
func (r *Registry) SupportedAccessItemTypes(platformKey string) []manifest.AccessItemTypeMetadata {
	p, ok := r.Get(platformKey)
	if !ok {
		return nil
	}
	return p.Manifest().SupportedAccessItemTypes
}

// RoleTemplates returns the role templates valid for one access-item type.
func (r *Registry) RoleTemplates(platformKey string, t manifest.AccessItemType) []string {
	p, ok := r.Get(platformKey)
	if !ok {
		return nil
	}
	meta, ok := p.Manifest().SupportedAccessItemTypes.Metadata(t)
	if !ok {
		return nil
	}
	return meta.RoleTemplates
}

// IsPAMSupported reports whether the platform declares shared-account access.
func (r *Registry) IsPAMSupported(platformKey string) bool {
	return r.IsAccessItemTypeSupported(platformKey, manifest.SharedAccount)
}

// SecurityCapabilities returns the platform's static security posture.
func (r *Registry) SecurityCapabilities(platformKey string) (manifest.SecurityCapabilities, bool) {
	p, ok := r.Get(platformKey)
	if !ok {
		return manifest.SecurityCapabilities{}, false
	}
	return p.Manifest().SecurityCapabilities, true
}

// ValidateAgencyConfig validates an agency-side configuration through the
// named plugin's schemas and the manifest-driven configuration validator.
// An unregistered platform yields a single synthetic error, never a crash.
func (r *Registry) ValidateAgencyConfig(platformKey string, t manifest.AccessItemType, cfg map[string]any) validation.Result {
	r.mu.RLock()
	e, ok := r.entries[platformKey]
	r.mu.RUnlock()
	if !ok {
		return pluginNotFound(platformKey)
	}

	res := e.agencyValidator.Validate(platformKey, t, cfg)
	res.Errors = append(res.Errors, validation.ValidateConfig(e.plugin.Manifest(), cfg).Errors...)
	return res
}

// ValidateClientTarget validates the client-side target document against the
// plugin's target schema.
func (r *Registry) ValidateClientTarget(platformKey string, t manifest.AccessItemType, target map[string]any) validation.Result {
	r.mu.RLock()
	e, ok := r.entries[platformKey]
	r.mu.RUnlock()
	if !ok {
		return pluginNotFound(platformKey)
	}
	return e.targetValidator.Validate(platformKey, t, target)
}

func pluginNotFound(platformKey string) validation.Result {
	return validation.Result{Errors: []validation.FieldError{{
		Field:   "plugin",
		Message: fmt.Sprintf("Plugin not found: %s", platformKey),
	}}}
}
