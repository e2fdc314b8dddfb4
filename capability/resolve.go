package capability

import "github.com/accessplane/access-host-sdk/manifest"

// Resolve computes the effective capability set for an access-item type under
// the given configuration context. It is a pure function: no side effects,
// deterministic for identical inputs, and total. Unknown types and contexts
// degrade to the conservative manual-only posture instead of failing.
//
// A flat declaration is returned unchanged. A rules-bearing declaration is
// reduced in declaration order: each matching rule's overrides are merged
// into the accumulator, later rules winning per-key. SHARED_ACCOUNT with no
// rules at all is forced to manual-only regardless of its default block;
// privileged credential handoff must never silently default to automated
// without an explicit rule declaring it.
func Resolve(m *manifest.Manifest, t manifest.AccessItemType, ctx *Context) manifest.AccessTypeCapability {
	if m == nil {
		return manifest.ManualOnly()
	}

	decl, ok := m.AccessTypeCapabilities[t]
	if !ok {
		return manifest.ManualOnly()
	}

	if t == manifest.SharedAccount && len(decl.Rules) == 0 {
		return manifest.ManualOnly()
	}

	if decl.IsFlat() {
		return decl.Default
	}

	resolved := decl.Default
	for _, rule := range decl.Rules {
		if ctx.matches(rule.When) {
			resolved = rule.Set.Apply(resolved)
		}
	}
	return resolved
}
