// Package pamgate handles operator acknowledgement of discouraged
// shared-account access: loads stored confirmations, decides what the
// platform's posture requires, prompts for the rest, persists decisions.
package pamgate

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/accessplane/access-host-sdk/capability"
	"github.com/accessplane/access-host-sdk/capability/confirmstore"
	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/validation"
)

// SecurityLevel controls the gate's prompting behavior.
type SecurityLevel string

const (
	SecurityStrict     SecurityLevel = "strict"
	SecurityStandard   SecurityLevel = "standard"
	SecurityPermissive SecurityLevel = "permissive"
)

// Gate obtains PAM confirmations according to platform posture.
type Gate struct {
	store         capability.ConfirmationStore
	prompter      capability.Prompter
	securityLevel SecurityLevel
	logger        *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithStore sets the confirmation store.
func WithStore(s capability.ConfirmationStore) Option {
	return func(g *Gate) { g.store = s }
}

// WithPrompter sets the prompter.
func WithPrompter(p capability.Prompter) Option {
	return func(g *Gate) { g.prompter = p }
}

// WithSecurityLevel sets the security policy level.
func WithSecurityLevel(level SecurityLevel) Option {
	return func(g *Gate) { g.securityLevel = level }
}

// WithLogger sets the gate's logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// NewGate creates a PAM gate with pluggable store and prompter.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		securityLevel: SecurityStandard,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = confirmstore.NewFileStore()
	}
	if g.prompter == nil {
		g.prompter = NewTerminalPrompter()
	}
	return g
}

// Confirm obtains the operator confirmation the platform's posture demands
// for the given context. A nil confirmation with nil error means the posture
// demands nothing. A returned error means the setup must not proceed.
func (g *Gate) Confirm(m *manifest.Manifest, ctx *capability.Context) (*capability.Confirmation, error) {
	req, needed := requirementFor(m, ctx)
	if !needed {
		return nil, nil
	}

	// A previously persisted confirmation that still satisfies the
	// requirement is reused without prompting.
	existing, err := g.store.Load()
	if err != nil {
		existing = map[string]capability.Confirmation{}
	}
	if conf, ok := existing[m.PlatformKey]; ok && satisfies(conf, req) {
		return &conf, nil
	}

	if req.RequiresReason && g.securityLevel == SecurityStrict {
		g.logger.Error("break-glass access denied by security policy",
			"level", string(SecurityStrict),
			"platform", m.PlatformKey)
		return nil, fmt.Errorf("break-glass access denied by strict security policy: %s", m.PlatformKey)
	}

	if !req.RequiresReason && g.securityLevel == SecurityPermissive {
		g.logger.Warn("auto-confirming discouraged shared-account access (permissive mode)",
			"platform", m.PlatformKey)
		return &capability.Confirmation{PlatformKey: m.PlatformKey, Confirmed: true}, nil
	}

	if !g.prompter.IsInteractive() {
		return nil, g.prompter.FormatNonInteractiveError(req)
	}

	conf, always, err := g.prompter.PromptForConfirmation(req)
	if err != nil {
		return nil, err
	}
	if !conf.Confirmed {
		return nil, fmt.Errorf("shared-account access denied by operator: %s", m.PlatformKey)
	}

	if always {
		existing[m.PlatformKey] = conf
		if err := g.store.Save(existing); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save confirmations: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Confirmation saved to %s\n", g.store.ConfigPath())
		}
	}

	return &conf, nil
}

// requirementFor derives the confirmation requirement from the platform's
// posture and the resolved ownership, mirroring the validator's gating.
func requirementFor(m *manifest.Manifest, ctx *capability.Context) (capability.ConfirmationRequest, bool) {
	if m == nil {
		return capability.ConfirmationRequest{}, false
	}
	sec := m.SecurityCapabilities
	var ownership manifest.OwnershipModel
	if ctx != nil {
		ownership = ctx.PAMOwnership
	}

	switch sec.PAMRecommendation {
	case manifest.PAMBreakGlassOnly:
		return capability.ConfirmationRequest{
			PlatformKey:    m.PlatformKey,
			Recommendation: sec.PAMRecommendation,
			Rationale:      sec.PAMRationale,
			Ownership:      ownership,
			RequiresReason: true,
		}, true
	case manifest.PAMNotRecommended:
		if ownership != manifest.AgencyOwned {
			return capability.ConfirmationRequest{}, false
		}
		return capability.ConfirmationRequest{
			PlatformKey:    m.PlatformKey,
			Recommendation: sec.PAMRecommendation,
			Rationale:      sec.PAMRationale,
			Ownership:      ownership,
		}, true
	default:
		return capability.ConfirmationRequest{}, false
	}
}

func satisfies(conf capability.Confirmation, req capability.ConfirmationRequest) bool {
	if !conf.Confirmed {
		return false
	}
	if !req.RequiresReason {
		return true
	}
	return manifest.ValidBreakGlassReason(string(conf.ReasonCode)) &&
		len(conf.Justification) >= validation.MinJustificationLength
}
