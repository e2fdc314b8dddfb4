// Package ga4 implements the Google Analytics 4 platform plugin.
package ga4

import (
	"context"
	"fmt"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/plugin"
)

// PlatformKey is the registry key for Google Analytics 4.
const PlatformKey = "google-analytics-4"

func boolPtr(b bool) *bool { return &b }

// Manifest returns GA4's static declaration. Named invites are fully
// automatable through the Admin API. Shared accounts default to manual and
// only become automatable when the agency owns a human-interactive identity.
func Manifest() *manifest.Manifest {
	return &manifest.Manifest{
		PlatformKey:  PlatformKey,
		DisplayName:  "Google Analytics 4",
		Version:      "1.4.0",
		Tier:         1,
		ClientFacing: true,
		SupportedAccessItemTypes: manifest.SupportedTypes{
			{
				Type:          manifest.NamedInvite,
				DisplayName:   "Named user invite",
				RoleTemplates: []string{"Viewer", "Analyst", "Editor", "Administrator"},
			},
			{
				Type:          manifest.PartnerDelegation,
				DisplayName:   "Partner (MCC-style) delegation",
				RoleTemplates: []string{"Analyst", "Editor"},
			},
			{
				Type:          manifest.SharedAccount,
				DisplayName:   "Shared login",
				RoleTemplates: []string{"Administrator"},
			},
		},
		SecurityCapabilities: manifest.SecurityCapabilities{
			SupportsDelegation:      true,
			SupportsGroupAccess:     true,
			SupportsOAuth:           true,
			SupportsCredentialLogin: true,
			PAMRecommendation:       manifest.PAMNotRecommended,
			PAMRationale:            "GA4 supports named invites for every role; shared logins lose attribution and trip Google's suspicious-login checks.",
		},
		AccessTypeCapabilities: map[manifest.AccessItemType]manifest.CapabilityDecl{
			manifest.NamedInvite: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   true,
				CanGrantAccess:         true,
				CanVerifyAccess:        true,
				RequiresEvidenceUpload: false,
			}),
			manifest.PartnerDelegation: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported:   false,
				CanGrantAccess:         true,
				CanVerifyAccess:        true,
				RequiresEvidenceUpload: false,
			}),
			manifest.SharedAccount: manifest.RuledCapability(
				manifest.ManualOnly(),
				manifest.CapabilityRule{
					// Client-supplied credentials stay fully manual.
					When: manifest.RuleCondition{PAMOwnership: manifest.ClientOwned},
					Set: manifest.CapabilityOverride{
						ClientOAuthSupported:   boolPtr(false),
						CanGrantAccess:         boolPtr(false),
						CanVerifyAccess:        boolPtr(false),
						RequiresEvidenceUpload: boolPtr(true),
					},
				},
				manifest.CapabilityRule{
					// An agency-owned human identity behaves like a normal
					// OAuth-capable grant.
					When: manifest.RuleCondition{
						PAMOwnership:    manifest.AgencyOwned,
						IdentityPurpose: manifest.HumanInteractive,
					},
					Set: manifest.CapabilityOverride{
						ClientOAuthSupported:   boolPtr(true),
						CanGrantAccess:         boolPtr(true),
						CanVerifyAccess:        boolPtr(true),
						RequiresEvidenceUpload: boolPtr(false),
					},
				},
			),
		},
		AllowedOwnershipModels:    []manifest.OwnershipModel{manifest.ClientOwned, manifest.AgencyOwned},
		AllowedIdentityStrategies: []manifest.IdentityStrategy{manifest.StaticAgencyIdentity, manifest.ClientDedicatedIdentity},
		AllowedAccessTypes:        []manifest.AccessItemType{manifest.NamedInvite, manifest.PartnerDelegation, manifest.SharedAccount},
		VerificationModes:         []manifest.VerificationMode{manifest.VerifyOAuthProbe, manifest.VerifyAPICheck, manifest.VerifyScreenshot},
	}
}

// NamedInviteConfig is the agency-side configuration for a GA4 named invite.
type NamedInviteConfig struct {
	InviteEmail string `json:"inviteEmail" jsonschema:"required,format=email,description=Address the invite is sent to"`
	Role        string `json:"role" jsonschema:"required,enum=Viewer,enum=Analyst,enum=Editor,enum=Administrator"`
	NotifyUser  bool   `json:"notifyUser,omitempty"`
}

// SharedAccountConfig is the agency-side configuration for a GA4 shared
// login, in the wire shape the conditional-requirement chain walks. Fields
// past pamOwnership are conditionally required, so the schema leaves them
// optional and the manifest validator enforces the chain.
type SharedAccountConfig struct {
	AccessItemType          string `json:"accessItemType,omitempty" jsonschema:"enum=SHARED_ACCOUNT"`
	PAMOwnership            string `json:"pamOwnership" jsonschema:"required,enum=CLIENT_OWNED,enum=AGENCY_OWNED"`
	IdentityPurpose         string `json:"identityPurpose,omitempty" jsonschema:"enum=HUMAN_INTERACTIVE,enum=INTEGRATION_NON_HUMAN"`
	IdentityStrategy        string `json:"identityStrategy,omitempty" jsonschema:"enum=STATIC_AGENCY_IDENTITY,enum=CLIENT_DEDICATED_IDENTITY"`
	AgencyIdentityID        string `json:"agencyIdentityId,omitempty"`
	IdentityType            string `json:"identityType,omitempty" jsonschema:"enum=MAILBOX,enum=SERVICE_ACCOUNT"`
	NamingTemplate          string `json:"namingTemplate,omitempty"`
	CheckoutDurationMinutes int    `json:"checkoutDurationMinutes,omitempty" jsonschema:"minimum=1"`
	CheckoutApproverGroup   string `json:"checkoutApproverGroup,omitempty"`
	IntegrationIdentityID   string `json:"integrationIdentityId,omitempty"`
	PAMConfirmation         bool   `json:"pamConfirmation,omitempty"`
	BreakGlassReasonCode    string `json:"breakGlassReasonCode,omitempty"`
	BreakGlassJustification string `json:"breakGlassJustification,omitempty"`
	VerificationMode        string `json:"verificationMode,omitempty"`
}

// ClientTarget identifies the GA4 property access is granted on.
type ClientTarget struct {
	PropertyID string `json:"propertyId" jsonschema:"required,pattern=^[0-9]+$,description=Numeric GA4 property ID"`
	AccountID  string `json:"accountId,omitempty" jsonschema:"pattern=^[0-9]+$"`
}

// Plugin binds the GA4 manifest to its schemas, instructions, and Admin API
// operations.
type Plugin struct {
	manifest  *manifest.Manifest
	transport plugin.Transport
}

// Option configures the GA4 plugin.
type Option func(*Plugin)

// WithTransport sets the Admin API transport. Without one, programmatic
// operations report TRANSPORT_UNCONFIGURED.
func WithTransport(t plugin.Transport) Option {
	return func(p *Plugin) { p.transport = t }
}

// New creates the GA4 plugin.
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
	case manifest.SharedAccount:
		return SharedAccountConfig{}, true
	default:
		return nil, false
	}
}

func (p *Plugin) ClientTargetSchema(t manifest.AccessItemType) (any, bool) {
	return ClientTarget{}, true
}

// Instructions renders the manual grant steps for flows the Admin API cannot
// perform on the client's behalf.
func (p *Plugin) Instructions(t manifest.AccessItemType, cfg map[string]any) ([]plugin.Step, error) {
	switch t {
	case manifest.NamedInvite:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Open property access management",
				Detail: "In analytics.google.com, go to Admin and open Property Access Management for property {{.propertyId}}.",
			},
			plugin.StepTemplate{
				Title:  "Invite the agency user",
				Detail: "Add {{.inviteEmail}} with the {{.role}} role and send the invite.",
			},
		).Build(cfg)
	case manifest.SharedAccount:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Hand over credentials securely",
				Detail: "Share the login for the agreed account through the credential vault, never over email or chat.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the Property Access Management page showing the granted access.",
			},
		).Build(cfg)
	default:
		return nil, fmt.Errorf("ga4: no instructions for access-item type %s", t)
	}
}

func (p *Plugin) StartOAuth(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "oauth.authorize", map[string]any{
		"scopes": []string{"https://www.googleapis.com/auth/analytics.manage.users"},
	})
}

func (p *Plugin) CompleteOAuth(ctx context.Context, req plugin.OperationRequest, cb plugin.OAuthCallback) plugin.OperationResult {
	return p.call(ctx, "oauth.token", map[string]any{
		"code":  cb.Code,
		"state": cb.State,
	})
}

func (p *Plugin) Grant(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "admin.accessBindings.create", map[string]any{
		"property": req.Target["propertyId"],
		"email":    req.Config["inviteEmail"],
		"role":     req.Config["role"],
	})
}

func (p *Plugin) Verify(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "admin.accessBindings.list", map[string]any{
		"property": req.Target["propertyId"],
		"email":    req.Config["inviteEmail"],
	})
}

func (p *Plugin) Revoke(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.call(ctx, "admin.accessBindings.delete", map[string]any{
		"property": req.Target["propertyId"],
		"email":    req.Config["inviteEmail"],
	})
}

func (p *Plugin) call(ctx context.Context, operation string, payload map[string]any) plugin.OperationResult {
	if p.transport == nil {
		return plugin.Failed(plugin.ErrCodeTransportUnconfigured,
			"ga4: no Admin API transport configured; fall back to manual instructions")
	}
	out, err := p.transport.Do(ctx, operation, payload)
	if err != nil {
		return plugin.Failed("GA4_API_ERROR", err.Error())
	}
	return plugin.Succeeded(out)
}
