package manifest

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// AccessTypeCapability is the four-boolean capability record for one
// access-item type under one configuration.
type AccessTypeCapability struct {
	ClientOAuthSupported   bool `json:"clientOAuthSupported" yaml:"clientOAuthSupported"`
	CanGrantAccess         bool `json:"canGrantAccess" yaml:"canGrantAccess"`
	CanVerifyAccess        bool `json:"canVerifyAccess" yaml:"canVerifyAccess"`
	RequiresEvidenceUpload bool `json:"requiresEvidenceUpload" yaml:"requiresEvidenceUpload"`
}

// ManualOnly is the conservative posture: no automation, evidence required.
// It is the resolved capability for any type a manifest does not declare.
func ManualOnly() AccessTypeCapability {
	return AccessTypeCapability{RequiresEvidenceUpload: true}
}

// CapabilityOverride is a partial override of an AccessTypeCapability.
// Nil fields leave the previous value in place.
type CapabilityOverride struct {
	ClientOAuthSupported   *bool `json:"clientOAuthSupported,omitempty" yaml:"clientOAuthSupported,omitempty"`
	CanGrantAccess         *bool `json:"canGrantAccess,omitempty" yaml:"canGrantAccess,omitempty"`
	CanVerifyAccess        *bool `json:"canVerifyAccess,omitempty" yaml:"canVerifyAccess,omitempty"`
	RequiresEvidenceUpload *bool `json:"requiresEvidenceUpload,omitempty" yaml:"requiresEvidenceUpload,omitempty"`
}

// Apply merges the override into c and returns the result. c is not mutated.
func (o CapabilityOverride) Apply(c AccessTypeCapability) AccessTypeCapability {
	if o.ClientOAuthSupported != nil {
		c.ClientOAuthSupported = *o.ClientOAuthSupported
	}
	if o.CanGrantAccess != nil {
		c.CanGrantAccess = *o.CanGrantAccess
	}
	if o.CanVerifyAccess != nil {
		c.CanVerifyAccess = *o.CanVerifyAccess
	}
	if o.RequiresEvidenceUpload != nil {
		c.RequiresEvidenceUpload = *o.RequiresEvidenceUpload
	}
	return c
}

// RuleCondition is the match clause of a capability rule. Empty fields are
// wildcards: the rule matches any context value for that field.
type RuleCondition struct {
	PAMOwnership     OwnershipModel   `json:"pamOwnership,omitempty" yaml:"pamOwnership,omitempty"`
	IdentityPurpose  IdentityPurpose  `json:"identityPurpose,omitempty" yaml:"identityPurpose,omitempty"`
	IdentityStrategy IdentityStrategy `json:"identityStrategy,omitempty" yaml:"identityStrategy,omitempty"`
}

// CapabilityRule overrides parts of a default capability when its condition
// matches the runtime configuration context.
type CapabilityRule struct {
	When RuleCondition      `json:"when" yaml:"when"`
	Set  CapabilityOverride `json:"set" yaml:"set"`
}

// CapabilityDecl is a manifest's capability declaration for one access-item
// type: either a flat capability, or a default plus an ordered rule list.
// Use FlatCapability or RuledCapability to construct one in Go; serialized
// manifests are canonicalized during decode.
type CapabilityDecl struct {
	Default AccessTypeCapability
	Rules   []CapabilityRule

	flat bool
}

// FlatCapability declares a capability with no conditional rules.
func FlatCapability(c AccessTypeCapability) CapabilityDecl {
	return CapabilityDecl{Default: c, flat: true}
}

// RuledCapability declares a default capability refined by ordered rules.
func RuledCapability(def AccessTypeCapability, rules ...CapabilityRule) CapabilityDecl {
	return CapabilityDecl{Default: def, Rules: rules}
}

// IsFlat reports whether the declaration carries no rule list.
func (d CapabilityDecl) IsFlat() bool {
	return d.flat
}

// AccessItemTypeMetadata names one supported access pattern and the role
// templates valid for it.
type AccessItemTypeMetadata struct {
	Type          AccessItemType `json:"type" yaml:"type"`
	DisplayName   string         `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	RoleTemplates []string       `json:"roleTemplates,omitempty" yaml:"roleTemplates,omitempty"`
}

// SecurityCapabilities is a platform's static security posture.
type SecurityCapabilities struct {
	SupportsDelegation      bool              `json:"supportsDelegation" yaml:"supportsDelegation"`
	SupportsGroupAccess     bool              `json:"supportsGroupAccess" yaml:"supportsGroupAccess"`
	SupportsOAuth           bool              `json:"supportsOAuth" yaml:"supportsOAuth"`
	SupportsCredentialLogin bool              `json:"supportsCredentialLogin" yaml:"supportsCredentialLogin"`
	PAMRecommendation       PAMRecommendation `json:"pamRecommendation" yaml:"pamRecommendation"`
	PAMRationale            string            `json:"pamRationale,omitempty" yaml:"pamRationale,omitempty"`
}

// Manifest is the full static declaration for one platform plugin.
type Manifest struct {
	PlatformKey  string `json:"platformKey" yaml:"platformKey"`
	DisplayName  string `json:"displayName" yaml:"displayName"`
	Version      string `json:"version" yaml:"version"`
	Tier         int    `json:"tier" yaml:"tier"`
	ClientFacing bool   `json:"clientFacing" yaml:"clientFacing"`

	SupportedAccessItemTypes SupportedTypes       `json:"supportedAccessItemTypes" yaml:"supportedAccessItemTypes"`
	SecurityCapabilities     SecurityCapabilities `json:"securityCapabilities" yaml:"securityCapabilities"`

	AccessTypeCapabilities map[AccessItemType]CapabilityDecl `json:"accessTypeCapabilities,omitempty" yaml:"accessTypeCapabilities,omitempty"`

	AllowedOwnershipModels    []OwnershipModel   `json:"allowedOwnershipModels,omitempty" yaml:"allowedOwnershipModels,omitempty"`
	AllowedIdentityStrategies []IdentityStrategy `json:"allowedIdentityStrategies,omitempty" yaml:"allowedIdentityStrategies,omitempty"`
	AllowedAccessTypes        []AccessItemType   `json:"allowedAccessTypes,omitempty" yaml:"allowedAccessTypes,omitempty"`
	VerificationModes         []VerificationMode `json:"verificationModes,omitempty" yaml:"verificationModes,omitempty"`
}

// SupportedTypes is the canonical representation of a manifest's supported
// access-item types. Legacy manifests declare a flat string array; decode
// canonicalizes both shapes into metadata records once, so queries never
// branch on shape at call time.
type SupportedTypes []AccessItemTypeMetadata

// Types returns just the access-item type keys, in declaration order.
func (s SupportedTypes) Types() []AccessItemType {
	out := make([]AccessItemType, 0, len(s))
	for _, m := range s {
		out = append(out, m.Type)
	}
	return out
}

// Contains reports whether t is a supported access-item type.
func (s SupportedTypes) Contains(t AccessItemType) bool {
	for _, m := range s {
		if m.Type == t {
			return true
		}
	}
	return false
}

// Metadata returns the metadata record for t, if declared.
func (s SupportedTypes) Metadata(t AccessItemType) (AccessItemTypeMetadata, bool) {
	for _, m := range s {
		if m.Type == t {
			return m, true
		}
	}
	return AccessItemTypeMetadata{}, false
}

// SupportsOwnership reports whether the ownership model is allow-listed.
func (m *Manifest) SupportsOwnership(o OwnershipModel) bool {
	for _, v := range m.AllowedOwnershipModels {
		if v == o {
			return true
		}
	}
	return false
}

// Validate checks the manifest's own invariants. A failure here is a plugin
// authoring bug, not a runtime condition.
func (m *Manifest) Validate() error {
	if m.PlatformKey == "" {
		return fmt.Errorf("manifest: platform key cannot be empty")
	}
	if m.Version != "" {
		if _, err := semver.NewVersion(m.Version); err != nil {
			return fmt.Errorf("manifest %q: invalid version %q: %w", m.PlatformKey, m.Version, err)
		}
	}
	if m.Tier < 1 || m.Tier > 3 {
		return fmt.Errorf("manifest %q: tier must be 1-3, got %d", m.PlatformKey, m.Tier)
	}
	seen := make(map[AccessItemType]bool, len(m.SupportedAccessItemTypes))
	for _, meta := range m.SupportedAccessItemTypes {
		if seen[meta.Type] {
			return fmt.Errorf("manifest %q: duplicate supported access-item type %q", m.PlatformKey, meta.Type)
		}
		seen[meta.Type] = true
	}
	for t := range m.AccessTypeCapabilities {
		if !m.SupportedAccessItemTypes.Contains(t) {
			return fmt.Errorf("manifest %q: capability declared for unsupported type %q", m.PlatformKey, t)
		}
	}
	return nil
}
