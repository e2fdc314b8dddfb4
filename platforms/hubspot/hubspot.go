// Package hubspot implements the HubSpot platform plugin.
package hubspot

import (
	"context"
	"fmt"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/plugin"
)

// PlatformKey is the registry key for HubSpot.
const PlatformKey = "hubspot"

func boolPtr(b bool) *bool { return &b }

// Manifest returns the HubSpot declaration. HubSpot seats are per-user, so
// group accounts map to a shared team mailbox identity and private-app
// tokens cover integrations.
func Manifest() *manifest.Manifest {
	return &manifest.Manifest{
		PlatformKey:  PlatformKey,
		DisplayName:  "HubSpot",
		Version:      "1.7.3",
		Tier:         2,
		ClientFacing: true,
		SupportedAccessItemTypes: manifest.SupportedTypes{
			{
				Type:          manifest.NamedInvite,
				DisplayName:   "Named user invite",
				RoleTemplates: []string{"View only", "Sales", "Marketing", "Super Admin"},
			},
			{
				Type:          manifest.GroupAccount,
				DisplayName:   "Team mailbox seat",
				RoleTemplates: []string{"Marketing"},
			},
			{
				Type:        manifest.ProxyToken,
				DisplayName: "Private app token",
			},
			{
				Type:        manifest.SharedAccount,
				DisplayName: "Shared login",
			},
		},
		SecurityCapabilities: manifest.SecurityCapabilities{
			SupportsDelegation:      false,
			SupportsGroupAccess:     true,
			SupportsOAuth:           true,
			SupportsCredentialLogin: true,
			PAMRecommendation:       manifest.PAMNotRecommended,
			PAMRationale:            "Per-seat invites and private-app tokens cover agency workflows; shared logins break HubSpot's per-user audit trail.",
		},
		AccessTypeCapabilities: map[manifest.AccessItemType]manifest.CapabilityDecl{
			manifest.NamedInvite: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   true,
				CanGrantAccess:         true,
				CanVerifyAccess:        true,
				RequiresEvidenceUpload: false,
			}),
			// The seat itself is granted through the API but the mailbox
			// identity behind it is provisioned by hand.
			manifest.GroupAccount: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   false,
				CanGrantAccess:         true,
				CanVerifyAccess:        true,
				RequiresEvidenceUpload: true,
			}),
			manifest.ProxyToken: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   false,
				CanGrantAccess:         false,
				CanVerifyAccess:        true,
				RequiresEvidenceUpload: false,
			}),
			manifest.SharedAccount: manifest.RuledCapability(
				manifest.ManualOnly(),
				manifest.CapabilityRule{
					// Integration identities never log in interactively, so
					// verification can run through the API.
					When: manifest.RuleCondition{
						PAMOwnership:    manifest.AgencyOwned,
						IdentityPurpose: manifest.IntegrationNonHuman,
					},
					Set: manifest.CapabilityOverride{
						CanVerifyAccess:        boolPtr(true),
						RequiresEvidenceUpload: boolPtr(false),
					},
				},
			),
		},
		AllowedOwnershipModels:    []manifest.OwnershipModel{manifest.ClientOwned, manifest.AgencyOwned},
		AllowedIdentityStrategies: []manifest.IdentityStrategy{manifest.ClientDedicatedIdentity},
		AllowedAccessTypes:        []manifest.AccessItemType{manifest.NamedInvite, manifest.GroupAccount, manifest.ProxyToken, manifest.SharedAccount},
		VerificationModes:         []manifest.VerificationMode{manifest.VerifyOAuthProbe, manifest.VerifyAPICheck, manifest.VerifyScreenshot},
	}
}

// NamedInviteConfig is the agency-side configuration for a HubSpot seat.
type NamedInviteConfig struct {
	InviteEmail string `json:"inviteEmail" jsonschema:"required,format=email"`
	Role        string `json:"role" jsonschema:"required,enum=View only,enum=Sales,enum=Marketing,enum=Super Admin"`
}

// GroupAccountConfig is the agency-side configuration for a team mailbox
// seat. The mailbox identity is dedicated per client and named from the
// template.
type GroupAccountConfig struct {
	IdentityType   string `json:"identityType" jsonschema:"required,enum=MAILBOX,enum=SERVICE_ACCOUNT"`
	NamingTemplate string `json:"namingTemplate" jsonschema:"required,description=Template for the mailbox address, e.g. {client}-marketing@agency.example"`
	Role           string `json:"role,omitempty" jsonschema:"enum=Marketing"`
}

// ProxyTokenConfig is the agency-side configuration for a private app token.
type ProxyTokenConfig struct {
	IntegrationIdentityID string   `json:"integrationIdentityId" jsonschema:"required,description=Vault record holding the private app token"`
	Scopes                []string `json:"scopes,omitempty"`
}

// ClientTarget identifies the client's HubSpot portal.
type ClientTarget struct {
	PortalID string `json:"portalId" jsonschema:"required,pattern=^[0-9]+$"`
}

// Plugin binds the HubSpot manifest to schemas, instructions, and the
// HubSpot settings API.
type Plugin struct {
	manifest  *manifest.Manifest
	transport plugin.Transport
}

// Option configures the HubSpot plugin.
type Option func(*Plugin)

// WithTransport sets the HubSpot API transport.
func WithTransport(t plugin.Transport) Option {
	return func(p *Plugin) { p.transport = t }
}

// New creates the HubSpot plugin.
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
	switch t {
	case manifest.NamedInvite:
		return NamedInviteConfig{}, true
	case manifest.GroupAccount:
		return GroupAccountConfig{}, true
	case manifest.ProxyToken:
		return ProxyTokenConfig{}, true
	default:
		return nil, false
	}
}

func (p *Plugin) ClientTargetSchema(t manifest.AccessItemType) (any, bool) {
	return ClientTarget{}, true
}

func (p *Plugin) Instructions(t manifest.AccessItemType, cfg map[string]any) ([]plugin.Step, error) {
	switch t {
	case manifest.NamedInvite:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Invite the agency user",
				Detail: "In Settings → Users & Teams for portal {{.portalId}}, invite {{.inviteEmail}} with the {{.role}} role.",
			},
		).Build(cfg)
	case manifest.GroupAccount:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Provision the mailbox",
				Detail: "Create the dedicated mailbox from template {{.namingTemplate}} in the agency directory.",
			},
			plugin.StepTemplate{
				Title:  "Invite the mailbox",
				Detail: "In Settings → Users & Teams, invite the mailbox address as a Marketing seat.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the Users & Teams page showing the seat.",
			},
		).Build(cfg)
	case manifest.ProxyToken:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Create the private app",
				Detail: "In Settings → Integrations → Private Apps, create an app with the agreed scopes and store the token in vault record {{.integrationIdentityId}}.",
			},
		).Build(cfg)
	case manifest.SharedAccount:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Hand over credentials securely",
				Detail: "Share the login through the credential vault, never over email or chat.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the Users & Teams page.",
			},
		).Build(cfg)
	default:
		return nil, fmt.Errorf("hubspot: no instructions for access-item type %s", t)
	}
}

func (p *Plugin) StartOAuth(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "oauth.authorize", map[string]any{
		"scopes": []string{"settings.users.read", "settings.users.write"},
	})
}

func (p *Plugin) CompleteOAuth(ctx context.Context, req plugin.OperationRequest, cb plugin.OAuthCallback) plugin.OperationResult {
	return p.call(ctx, "oauth.token", map[string]any{"code": cb.Code, "state": cb.State})
}

func (p *Plugin) Grant(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "settings.users.create", map[string]any{
		"portal": req.Target["portalId"],
		"email":  req.Config["inviteEmail"],
		"role":   req.Config["role"],
	})
}

func (p *Plugin) Verify(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "settings.users.list", map[string]any{
		"portal": req.Target["portalId"],
	})
}

func (p *Plugin) Revoke(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "settings.users.delete", map[string]any{
		"portal": req.Target["portalId"],
		"email":  req.Config["inviteEmail"],
	})
}

func (p *Plugin) call(ctx context.Context, operation string, payload map[string]any) plugin.OperationResult {
	if p.transport == nil {
		return plugin.Failed(plugin.ErrCodeTransportUnconfigured,
			"hubspot: no API transport configured; fall back to manual instructions")
	}
	out, err := p.transport.Do(ctx, operation, payload)
	if err != nil {
		return plugin.Failed("HUBSPOT_API_ERROR", err.Error())
	}
	return plugin.Succeeded(out)
}
