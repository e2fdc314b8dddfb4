// Package metaads implements the Meta Ads (Business Manager) platform plugin.
//
// Meta has no programmatic operations here: Business Manager partner access
// is granted in the UI, so the plugin is manifest, schemas, and instructions
// only.
package metaads

import (
	"fmt"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/plugin"
)

// PlatformKey is the registry key for Meta Ads.
const PlatformKey = "meta-ads"

// Manifest returns the Meta Ads declaration. Partner delegation through
// Business Manager is the only sanctioned pattern; shared logins trigger
// Meta's checkpoint system and are reserved for break-glass situations.
func Manifest() *manifest.Manifest {
	return &manifest.Manifest{
		PlatformKey:  PlatformKey,
		DisplayName:  "Meta Ads",
		Version:      "1.2.1",
		Tier:         1,
		ClientFacing: true,
		SupportedAccessItemTypes: manifest.SupportedTypes{
			{
				Type:          manifest.PartnerDelegation,
				DisplayName:   "Business Manager partner access",
				RoleTemplates: []string{"Ads Analyst", "Advertiser", "Admin"},
			},
			{
				Type:          manifest.NamedInvite,
				DisplayName:   "Named people invite",
				RoleTemplates: []string{"Ads Analyst", "Advertiser", "Admin"},
			},
			{
				Type:        manifest.SharedAccount,
				DisplayName: "Shared personal profile",
			},
		},
		SecurityCapabilities: manifest.SecurityCapabilities{
			SupportsDelegation:      true,
			SupportsGroupAccess:     false,
			SupportsOAuth:           false,
			SupportsCredentialLogin: true,
			PAMRecommendation:       manifest.PAMBreakGlassOnly,
			PAMRationale:            "Sharing a personal Meta profile violates Meta's terms and routinely locks the account behind identity checkpoints.",
		},
		AccessTypeCapabilities: map[manifest.AccessItemType]manifest.CapabilityDecl{
			manifest.PartnerDelegation: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   false,
				CanGrantAccess:         false,
				CanVerifyAccess:        false,
				RequiresEvidenceUpload: true,
			}),
			manifest.NamedInvite: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   false,
				CanGrantAccess:         false,
				CanVerifyAccess:        false,
				RequiresEvidenceUpload: true,
			}),
			// Declared without rules on purpose: shared profiles must never
			// resolve to anything but the manual-evidence flow.
			manifest.SharedAccount: manifest.FlatCapability(manifest.ManualOnly()),
		},
		AllowedOwnershipModels: []manifest.OwnershipModel{manifest.ClientOwned},
		AllowedAccessTypes:     []manifest.AccessItemType{manifest.PartnerDelegation, manifest.NamedInvite, manifest.SharedAccount},
		VerificationModes:      []manifest.VerificationMode{manifest.VerifyScreenshot},
	}
}

// DelegationConfig is the agency-side configuration for partner access.
type DelegationConfig struct {
	AgencyBusinessID string `json:"agencyBusinessId" jsonschema:"required,pattern=^[0-9]+$,description=Agency Business Manager ID"`
	Role             string `json:"role" jsonschema:"required,enum=Ads Analyst,enum=Advertiser,enum=Admin"`
}

// ClientTarget identifies the client's ad account.
type ClientTarget struct {
	AdAccountID string `json:"adAccountId" jsonschema:"required,pattern=^act_[0-9]+$"`
	BusinessID  string `json:"businessId,omitempty" jsonschema:"pattern=^[0-9]+$"`
}

// Plugin is the manifest-and-instructions-only Meta Ads plugin.
type Plugin struct {
	manifest *manifest.Manifest
}

// New creates the Meta Ads plugin.
func New() *Plugin {
	return &Plugin{manifest: Manifest()}
}

func (p *Plugin) Manifest() *manifest.Manifest {
	return p.manifest
}

func (p *Plugin) AgencyConfigSchema(t manifest.AccessItemType) (any, bool) {
	if t == manifest.PartnerDelegation {
		return DelegationConfig{}, true
	}
	return nil, false
}

func (p *Plugin) ClientTargetSchema(t manifest.AccessItemType) (any, bool) {
	return ClientTarget{}, true
}

func (p *Plugin) Instructions(t manifest.AccessItemType, cfg map[string]any) ([]plugin.Step, error) {
	switch t {
	case manifest.PartnerDelegation:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Open Business settings",
				Detail: "In business.facebook.com, open Business settings for the business that owns ad account {{.adAccountId}}.",
			},
			plugin.StepTemplate{
				Title:  "Assign the partner",
				Detail: "Under Accounts → Ad accounts, choose Assign partners and enter Business ID {{.agencyBusinessId}} with the {{.role}} role.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the Partners tab showing the assignment.",
			},
		).Build(cfg)
	case manifest.NamedInvite:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Invite the agency user",
				Detail: "Under Business settings → People, invite the agency user and assign ad account {{.adAccountId}}.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the People tab showing the invite.",
			},
		).Build(cfg)
	case manifest.SharedAccount:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Record the break-glass approval",
				Detail: "Shared profiles are break-glass only. Record the approved reason before any credentials move.",
			},
			plugin.StepTemplate{
				Title:  "Hand over credentials securely",
				Detail: "Share the profile login through the credential vault, never over email or chat.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the profile's Ad account settings page.",
			},
		).Build(cfg)
	default:
		return nil, fmt.Errorf("metaads: no instructions for access-item type %s", t)
	}
}
