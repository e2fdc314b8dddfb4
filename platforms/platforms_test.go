package platforms_test

import (
	"context"
	"testing"

	"github.com/accessplane/access-host-sdk/capability"
	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/platforms"
	"github.com/accessplane/access-host-sdk/platforms/ga4"
	"github.com/accessplane/access-host-sdk/platforms/metaads"
	"github.com/accessplane/access-host-sdk/platforms/sfmc"
	"github.com/accessplane/access-host-sdk/plugin"
	"github.com/accessplane/access-host-sdk/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAll(t *testing.T) {
	reg := registry.New()
	require.NoError(t, platforms.RegisterAll(reg))

	assert.Equal(t, []string{
		"google-ads",
		"google-analytics-4",
		"hubspot",
		"meta-ads",
		"salesforce-marketing-cloud",
	}, reg.PlatformKeys())
}

func TestBuiltinManifestsAreValid(t *testing.T) {
	for _, p := range platforms.All() {
		t.Run(p.Manifest().PlatformKey, func(t *testing.T) {
			assert.NoError(t, p.Manifest().Validate())
		})
	}
}

func TestGA4_CapabilityScenarios(t *testing.T) {
	m := ga4.Manifest()

	t.Run("named invite is fully automated", func(t *testing.T) {
		got := capability.Resolve(m, manifest.NamedInvite, &capability.Context{})
		assert.Equal(t, manifest.AccessTypeCapability{
			ClientOAuthSupported: true,
			CanGrantAccess:       true,
			CanVerifyAccess:      true,
		}, got)
	})

	t.Run("client-owned shared account is fully manual", func(t *testing.T) {
		got := capability.Resolve(m, manifest.SharedAccount, &capability.Context{
			PAMOwnership: manifest.ClientOwned,
		})
		assert.Equal(t, manifest.ManualOnly(), got)
	})

	t.Run("agency-owned human identity is fully automated", func(t *testing.T) {
		got := capability.Resolve(m, manifest.SharedAccount, &capability.Context{
			PAMOwnership:    manifest.AgencyOwned,
			IdentityPurpose: manifest.HumanInteractive,
		})
		assert.Equal(t, manifest.AccessTypeCapability{
			ClientOAuthSupported: true,
			CanGrantAccess:       true,
			CanVerifyAccess:      true,
		}, got)
	})

	t.Run("unknown context falls back to the rule default", func(t *testing.T) {
		got := capability.Resolve(m, manifest.SharedAccount, &capability.Context{})
		assert.Equal(t, manifest.ManualOnly(), got)
	})
}

func TestGA4_InstructionsRenderConfig(t *testing.T) {
	p := ga4.New()
	steps, err := p.Instructions(manifest.NamedInvite, map[string]any{
		"propertyId":  "123456",
		"inviteEmail": "ops@agency.example",
		"role":        "Editor",
	})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Contains(t, steps[0].Detail, "123456")
	assert.Contains(t, steps[1].Detail, "ops@agency.example")
	assert.Contains(t, steps[1].Detail, "Editor")
}

func TestGA4_OperationsWithoutTransport(t *testing.T) {
	p := ga4.New()
	res := p.Grant(context.Background(), plugin.OperationRequest{
		AccessItemType: manifest.NamedInvite,
		Config:         map[string]any{"inviteEmail": "ops@agency.example", "role": "Viewer"},
		Target:         map[string]any{"propertyId": "123456"},
	})
	assert.False(t, res.Success)
	assert.Equal(t, plugin.ErrCodeTransportUnconfigured, res.ErrorCode)
}

type recordingTransport struct {
	operation string
	payload   map[string]any
}

func (t *recordingTransport) Do(ctx context.Context, operation string, payload map[string]any) (map[string]any, error) {
	t.operation = operation
	t.payload = payload
	return map[string]any{"status": "ok"}, nil
}

func TestGA4_OperationsWithTransport(t *testing.T) {
	tr := &recordingTransport{}
	p := ga4.New(ga4.WithTransport(tr))

	res := p.Verify(context.Background(), plugin.OperationRequest{
		AccessItemType: manifest.NamedInvite,
		Config:         map[string]any{"inviteEmail": "ops@agency.example"},
		Target:         map[string]any{"propertyId": "123456"},
	})
	require.True(t, res.Success)
	assert.Equal(t, "admin.accessBindings.list", tr.operation)
	assert.Equal(t, "123456", tr.payload["property"])
}

func TestMetaAds_BreakGlassValidation(t *testing.T) {
	reg := registry.New()
	require.NoError(t, platforms.RegisterAll(reg))

	base := map[string]any{
		"accessItemType":  "SHARED_ACCOUNT",
		"pamOwnership":    "CLIENT_OWNED",
		"pamConfirmation": true,
	}

	t.Run("short justification is exactly one error", func(t *testing.T) {
		cfg := map[string]any{
			"breakGlassReasonCode":    "ACCOUNT_LOCKOUT",
			"breakGlassJustification": "locked out",
		}
		for k, v := range base {
			cfg[k] = v
		}

		res := reg.ValidateAgencyConfig(metaads.PlatformKey, manifest.SharedAccount, cfg)
		require.Len(t, res.Errors, 1, "errors: %v", res.Messages())
		assert.Equal(t, "breakGlassJustification", res.Errors[0].Field)
	})

	t.Run("complete break-glass configuration passes", func(t *testing.T) {
		cfg := map[string]any{
			"breakGlassReasonCode":    "ACCOUNT_LOCKOUT",
			"breakGlassJustification": "Locked out of the client profile two days before campaign launch.",
		}
		for k, v := range base {
			cfg[k] = v
		}

		res := reg.ValidateAgencyConfig(metaads.PlatformKey, manifest.SharedAccount, cfg)
		assert.True(t, res.Valid(), "errors: %v", res.Messages())
	})
}

func TestMetaAds_SharedAccountNeverAutomates(t *testing.T) {
	m := metaads.Manifest()
	got := capability.Resolve(m, manifest.SharedAccount, &capability.Context{
		PAMOwnership:    manifest.AgencyOwned,
		IdentityPurpose: manifest.HumanInteractive,
	})
	assert.Equal(t, manifest.ManualOnly(), got)
}

func TestSFMC_EmbeddedLegacyManifest(t *testing.T) {
	m := sfmc.Manifest()
	require.NoError(t, m.Validate())

	assert.Equal(t, sfmc.PlatformKey, m.PlatformKey)
	assert.Equal(t, manifest.PAMBreakGlassOnly, m.SecurityCapabilities.PAMRecommendation)

	// Legacy string-array types come out as canonical metadata records.
	assert.Equal(t,
		[]manifest.AccessItemType{manifest.NamedInvite, manifest.SharedAccount},
		m.SupportedAccessItemTypes.Types())

	// The legacy flat shared-account block resolves manual-only whatever the
	// context claims.
	got := capability.Resolve(m, manifest.SharedAccount, &capability.Context{
		PAMOwnership:    manifest.AgencyOwned,
		IdentityPurpose: manifest.HumanInteractive,
	})
	assert.Equal(t, manifest.ManualOnly(), got)
}

func TestHubSpot_TargetValidation(t *testing.T) {
	reg := registry.New()
	require.NoError(t, platforms.RegisterAll(reg))

	t.Run("valid portal target", func(t *testing.T) {
		res := reg.ValidateClientTarget("hubspot", manifest.NamedInvite, map[string]any{
			"portalId": "8675309",
		})
		assert.True(t, res.Valid(), "errors: %v", res.Messages())
	})

	t.Run("malformed portal id", func(t *testing.T) {
		res := reg.ValidateClientTarget("hubspot", manifest.NamedInvite, map[string]any{
			"portalId": "not-a-number",
		})
		assert.False(t, res.Valid())
	})
}
