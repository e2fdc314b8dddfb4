// Package googleads implements the Google Ads platform plugin.
package googleads

import (
	"context"
	"fmt"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/plugin"
)

// PlatformKey is the registry key for Google Ads.
const PlatformKey = "google-ads"

func boolPtr(b bool) *bool { return &b }

// Manifest returns the Google Ads declaration. Manager-account (MCC) links
// are the preferred pattern; shared logins exist only for legacy client
// accounts that cannot be linked.
func Manifest() *manifest.Manifest {
	return &manifest.Manifest{
		PlatformKey:  PlatformKey,
		DisplayName:  "Google Ads",
		Version:      "2.1.0",
		Tier:         1,
		ClientFacing: true,
		SupportedAccessItemTypes: manifest.SupportedTypes{
			{
				Type:          manifest.PartnerDelegation,
				DisplayName:   "Manager account (MCC) link",
				RoleTemplates: []string{"Standard", "Read only", "Admin"},
			},
			{
				Type:          manifest.NamedInvite,
				DisplayName:   "Named user invite",
				RoleTemplates: []string{"Read only", "Standard", "Admin"},
			},
			{
				Type:          manifest.SharedAccount,
				DisplayName:   "Shared login (legacy accounts)",
				RoleTemplates: []string{"Admin"},
			},
		},
		SecurityCapabilities: manifest.SecurityCapabilities{
			SupportsDelegation:      true,
			SupportsGroupAccess:     false,
			SupportsOAuth:           true,
			SupportsCredentialLogin: true,
			PAMRecommendation:       manifest.PAMNotRecommended,
			PAMRationale:            "MCC links cover every agency workflow; shared logins breach Google Ads policy for managed accounts.",
		},
		AccessTypeCapabilities: map[manifest.AccessItemType]manifest.CapabilityDecl{
			manifest.PartnerDelegation: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   true,
				CanGrantAccess:         true,
				CanVerifyAccess:        true,
				RequiresEvidenceUpload: false,
			}),
			manifest.NamedInvite: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   true,
				CanGrantAccess:         true,
				CanVerifyAccess:        true,
				RequiresEvidenceUpload: false,
			}),
			manifest.SharedAccount: manifest.RuledCapability(
				manifest.ManualOnly(),
				manifest.CapabilityRule{
					// Agency-owned static identities can at least be verified
					// through the API once linked.
					When: manifest.RuleCondition{
						PAMOwnership:     manifest.AgencyOwned,
						IdentityStrategy: manifest.StaticAgencyIdentity,
					},
					Set: manifest.CapabilityOverride{
						CanVerifyAccess: boolPtr(true),
					},
				},
			),
		},
		AllowedOwnershipModels:    []manifest.OwnershipModel{manifest.ClientOwned, manifest.AgencyOwned},
		AllowedIdentityStrategies: []manifest.IdentityStrategy{manifest.StaticAgencyIdentity},
		AllowedAccessTypes:        []manifest.AccessItemType{manifest.PartnerDelegation, manifest.NamedInvite, manifest.SharedAccount},
		VerificationModes:         []manifest.VerificationMode{manifest.VerifyOAuthProbe, manifest.VerifyAPICheck},
	}
}

// DelegationConfig is the agency-side configuration for an MCC link.
type DelegationConfig struct {
	ManagerCustomerID string `json:"managerCustomerId" jsonschema:"required,pattern=^[0-9-]+$,description=Agency MCC customer ID"`
	Role              string `json:"role" jsonschema:"required,enum=Read only,enum=Standard,enum=Admin"`
}

// ClientTarget identifies the client's Google Ads account.
type ClientTarget struct {
	CustomerID string `json:"customerId" jsonschema:"required,pattern=^[0-9-]+$"`
}

// Plugin binds the Google Ads manifest to schemas, instructions, and the
// Google Ads API operations.
type Plugin struct {
	manifest  *manifest.Manifest
	transport plugin.Transport
}

// Option configures the Google Ads plugin.
type Option func(*Plugin)

// WithTransport sets the Google Ads API transport.
func WithTransport(t plugin.Transport) Option {
	return func(p *Plugin) { p.transport = t }
}

// New creates the Google Ads plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{manifest: Manifest()}
	for _, opt := range opts {
		opt(p)
	}
	return p
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
				Title:  "Accept the link request",
				Detail: "In ads.google.com, open Admin → Access and security → Managers and accept the link request from manager account {{.managerCustomerId}}.",
			},
		).Build(cfg)
	case manifest.SharedAccount:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Hand over credentials securely",
				Detail: "Share the legacy account login through the credential vault.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the Access and security page.",
			},
		).Build(cfg)
	default:
		return nil, fmt.Errorf("googleads: no instructions for access-item type %s", t)
	}
}

func (p *Plugin) StartOAuth(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "oauth.authorize", map[string]any{
		"scopes": []string{"https://www.googleapis.com/auth/adwords"},
	})
}

func (p *Plugin) CompleteOAuth(ctx context.Context, req plugin.OperationRequest, cb plugin.OAuthCallback) plugin.OperationResult {
	return p.call(ctx, "oauth.token", map[string]any{"code": cb.Code, "state": cb.State})
}

func (p *Plugin) Grant(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "customerManagerLinks.create", map[string]any{
		"customer": req.Target["customerId"],
		"manager":  req.Config["managerCustomerId"],
	})
}

func (p *Plugin) Verify(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "customerManagerLinks.list", map[string]any{
		"customer": req.Target["customerId"],
	})
}

func (p *Plugin) Revoke(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "customerManagerLinks.delete", map[string]any{
		"customer": req.Target["customerId"],
		"manager":  req.Config["managerCustomerId"],
	})
}

func (p *Plugin) call(ctx context.Context, operation string, payload map[string]any) plugin.OperationResult {
	if p.transport == nil {
		return plugin.Failed(plugin.ErrCodeTransportUnconfigured,
			"googleads: no API transport configured; fall back to manual instructions")
	}
	out, err := p.transport.Do(ctx, operation, payload)
	if err != nil {
		return plugin.Failed("GOOGLE_ADS_API_ERROR", err.Error())
	}
	return plugin.Succeeded(out)
}
