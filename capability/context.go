// Package capability resolves the effective capability set for an access-item
// type from a platform manifest and a runtime configuration context.
package capability

import "github.com/accessplane/access-host-sdk/manifest"

// Config map keys recognized when building a Context. The pamIdentityStrategy
// key is a legacy alias for identityStrategy; it is resolved here, once, and
// never consulted again downstream.
const (
	KeyPAMOwnership              = "pamOwnership"
	KeyIdentityPurpose           = "identityPurpose"
	KeyIdentityStrategy          = "identityStrategy"
	KeyLegacyPAMIdentityStrategy = "pamIdentityStrategy"
)

// Context is the caller-supplied runtime configuration an access item is
// being resolved under. It is a value object: constructed per call, never
// persisted by the engine. Empty fields act as wildcards.
type Context struct {
	PAMOwnership     manifest.OwnershipModel
	IdentityPurpose  manifest.IdentityPurpose
	IdentityStrategy manifest.IdentityStrategy
}

// ContextFromMap extracts the capability-relevant axes from a free-form
// configuration map. Unknown or non-string values are ignored rather than
// rejected; resolution degrades to defaults instead of failing. When both
// identityStrategy and its legacy alias are present, the canonical field wins.
func ContextFromMap(cfg map[string]any) *Context {
	ctx := &Context{}
	if cfg == nil {
		return ctx
	}
	if v, ok := cfg[KeyPAMOwnership].(string); ok {
		ctx.PAMOwnership = manifest.OwnershipModel(v)
	}
	if v, ok := cfg[KeyIdentityPurpose].(string); ok {
		ctx.IdentityPurpose = manifest.IdentityPurpose(v)
	}
	if v, ok := cfg[KeyIdentityStrategy].(string); ok {
		ctx.IdentityStrategy = manifest.IdentityStrategy(v)
	} else if v, ok := cfg[KeyLegacyPAMIdentityStrategy].(string); ok {
		ctx.IdentityStrategy = manifest.IdentityStrategy(v)
	}
	return ctx
}

// matches reports whether the context satisfies every field the condition
// constrains. Empty condition fields are wildcards; a constrained field never
// matches an absent context value.
func (c *Context) matches(when manifest.RuleCondition) bool {
	if when.PAMOwnership != "" && (c == nil || c.PAMOwnership != when.PAMOwnership) {
		return false
	}
	if when.IdentityPurpose != "" && (c == nil || c.IdentityPurpose != when.IdentityPurpose) {
		return false
	}
	if when.IdentityStrategy != "" && (c == nil || c.IdentityStrategy != when.IdentityStrategy) {
		return false
	}
	return true
}
