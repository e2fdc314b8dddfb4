package capability

import (
	"github.com/accessplane/access-host-sdk/manifest"
)

// ConfirmationRequest contains what the operator must acknowledge before
// shared-account access is configured against the platform's recommendation.
type ConfirmationRequest struct {
	PlatformKey    string
	Recommendation manifest.PAMRecommendation
	Rationale      string
	Ownership      manifest.OwnershipModel

	// RequiresReason is set for break-glass-only platforms, which additionally
	// need a reason code and a written justification.
	RequiresReason bool
}

// Confirmation records an operator's acknowledged PAM decision.
type Confirmation struct {
	PlatformKey   string                    `yaml:"platformKey" json:"platformKey"`
	Confirmed     bool                      `yaml:"confirmed" json:"confirmed"`
	ReasonCode    manifest.BreakGlassReason `yaml:"reasonCode,omitempty" json:"reasonCode,omitempty"`
	Justification string                    `yaml:"justification,omitempty" json:"justification,omitempty"`
}

// ConfirmationStore persists and retrieves operator PAM confirmations,
// keyed by platform.
type ConfirmationStore interface {
	Load() (map[string]Confirmation, error)
	Save(confirmations map[string]Confirmation) error
	ConfigPath() string
}

// Prompter handles interactive operator acknowledgement.
type Prompter interface {
	IsInteractive() bool
	PromptForConfirmation(req ConfirmationRequest) (conf Confirmation, always bool, err error)
	FormatNonInteractiveError(req ConfirmationRequest) error
}

// GatePort obtains PAM confirmations according to platform posture.
type GatePort interface {
	Confirm(m *manifest.Manifest, ctx *Context) (*Confirmation, error)
}
