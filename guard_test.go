package accesshost_test

import (
	"context"
	"testing"

	accesshost "github.com/accessplane/access-host-sdk"
	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/plugin"
	"github.com/accessplane/access-host-sdk/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func guardManifest() *manifest.Manifest {
	return &manifest.Manifest{
		PlatformKey: "google-analytics-4",
		Version:     "1.0.0",
		Tier:        1,
		SupportedAccessItemTypes: manifest.SupportedTypes{
			{Type: manifest.NamedInvite},
			{Type: manifest.PartnerDelegation},
			{Type: manifest.SharedAccount},
		},
		AccessTypeCapabilities: map[manifest.AccessItemType]manifest.CapabilityDecl{
			manifest.NamedInvite: manifest.FlatCapability(manifest.AccessTypeCapability{
				ClientOAuthSupported: true,
				CanGrantAccess:       true,
				CanVerifyAccess:      true,
			}),
			// Delegation is verifiable but granted by the client, not us.
			manifest.PartnerDelegation: manifest.FlatCapability(manifest.AccessTypeCapability{
				CanVerifyAccess:        true,
				RequiresEvidenceUpload: true,
			}),
			manifest.SharedAccount: manifest.RuledCapability(
				manifest.ManualOnly(),
				manifest.CapabilityRule{
					When: manifest.RuleCondition{
						PAMOwnership:    manifest.AgencyOwned,
						IdentityPurpose: manifest.HumanInteractive,
					},
					Set: manifest.CapabilityOverride{
						CanGrantAccess:  boolPtr(true),
						CanVerifyAccess: boolPtr(true),
					},
				},
			),
		},
	}
}

func newGuardFixture(t *testing.T, opts ...accesshost.GuardOption) (*accesshost.OperationGuard, *plugin.MockPlugin) {
	t.Helper()
	p := &plugin.MockPlugin{
		ManifestValue: guardManifest(),
		GrantResult:   plugin.Succeeded(map[string]any{"bindingId": "b-1"}),
		VerifyResult:  plugin.Succeeded(nil),
		RevokeResult:  plugin.Succeeded(nil),
		OAuthResult:   plugin.Succeeded(map[string]any{"authUrl": "https://example.test/auth"}),
	}
	reg := registry.New()
	require.NoError(t, reg.Register(p))
	return accesshost.NewOperationGuard(reg, opts...), p
}

func TestOperationGuard_AllowsSupportedOperations(t *testing.T) {
	guard, p := newGuardFixture(t)
	req := plugin.OperationRequest{AccessItemType: manifest.NamedInvite}

	res := guard.Grant(context.Background(), "google-analytics-4", req)
	assert.True(t, res.Success)
	assert.True(t, p.GrantCalled)

	res = guard.Verify(context.Background(), "google-analytics-4", req)
	assert.True(t, res.Success)

	res = guard.StartOAuth(context.Background(), "google-analytics-4", req)
	assert.True(t, res.Success)
	assert.Equal(t, "https://example.test/auth", res.Details["authUrl"])
}

func TestOperationGuard_RefusesUnsupportedOperations(t *testing.T) {
	guard, p := newGuardFixture(t)
	req := plugin.OperationRequest{AccessItemType: manifest.PartnerDelegation}

	t.Run("grant without the grant capability", func(t *testing.T) {
		res := guard.Grant(context.Background(), "google-analytics-4", req)
		assert.False(t, res.Success)
		assert.Equal(t, plugin.ErrCodeUnsupported, res.ErrorCode)
		assert.False(t, p.GrantCalled, "plugin must not be invoked on refusal")
	})

	t.Run("verify is still allowed for the same type", func(t *testing.T) {
		res := guard.Verify(context.Background(), "google-analytics-4", req)
		assert.True(t, res.Success)
	})

	t.Run("oauth refused when the type does not support it", func(t *testing.T) {
		res := guard.StartOAuth(context.Background(), "google-analytics-4", req)
		assert.False(t, res.Success)
		assert.Equal(t, plugin.ErrCodeUnsupported, res.ErrorCode)
	})
}

func TestOperationGuard_CapabilityFollowsConfiguration(t *testing.T) {
	guard, _ := newGuardFixture(t)

	t.Run("shared account without context is refused", func(t *testing.T) {
		res := guard.Grant(context.Background(), "google-analytics-4", plugin.OperationRequest{
			AccessItemType: manifest.SharedAccount,
		})
		assert.False(t, res.Success)
	})

	t.Run("agency-owned human identity unlocks the grant", func(t *testing.T) {
		res := guard.Grant(context.Background(), "google-analytics-4", plugin.OperationRequest{
			AccessItemType: manifest.SharedAccount,
			Config: map[string]any{
				"pamOwnership":    "AGENCY_OWNED",
				"identityPurpose": "HUMAN_INTERACTIVE",
			},
		})
		assert.True(t, res.Success)
	})
}

func TestOperationGuard_UnknownPlatform(t *testing.T) {
	guard, _ := newGuardFixture(t)

	res := guard.Verify(context.Background(), "nonexistent-platform", plugin.OperationRequest{
		AccessItemType: manifest.NamedInvite,
	})
	assert.False(t, res.Success)
	assert.Equal(t, "PLUGIN_NOT_FOUND", res.ErrorCode)
	assert.Contains(t, res.Error, "Plugin not found: nonexistent-platform")
}

// manifestOnlyPlugin deliberately does not implement NetworkOperator.
type manifestOnlyPlugin struct {
	m *manifest.Manifest
}

func (p *manifestOnlyPlugin) Manifest() *manifest.Manifest { return p.m }
func (p *manifestOnlyPlugin) AgencyConfigSchema(manifest.AccessItemType) (any, bool) {
	return nil, false
}
func (p *manifestOnlyPlugin) ClientTargetSchema(manifest.AccessItemType) (any, bool) {
	return nil, false
}
func (p *manifestOnlyPlugin) Instructions(manifest.AccessItemType, map[string]any) ([]plugin.Step, error) {
	return nil, nil
}

func TestOperationGuard_PluginWithoutOperations(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(&manifestOnlyPlugin{m: guardManifest()}))
	guard := accesshost.NewOperationGuard(reg)

	res := guard.Grant(context.Background(), "google-analytics-4", plugin.OperationRequest{
		AccessItemType: manifest.NamedInvite,
	})
	assert.False(t, res.Success)
	assert.Equal(t, plugin.ErrCodeUnsupported, res.ErrorCode)
	assert.Contains(t, res.Error, "no programmatic operations")
}

func TestOperationGuard_DenialHandler(t *testing.T) {
	var denied []string
	handler := func(ctx context.Context, platformKey string, op accesshost.Operation, reason string) {
		denied = append(denied, string(op))
	}

	guard, _ := newGuardFixture(t, accesshost.WithDenialHandler(handler))

	guard.Grant(context.Background(), "google-analytics-4", plugin.OperationRequest{
		AccessItemType: manifest.PartnerDelegation,
	})
	guard.Revoke(context.Background(), "google-analytics-4", plugin.OperationRequest{
		AccessItemType: manifest.PartnerDelegation,
	})

	assert.Equal(t, []string{"grant", "revoke"}, denied)
}

func TestOperationGuard_MiddlewareOrderAndContext(t *testing.T) {
	var order []string
	mw := func(name string) accesshost.Middleware {
		return func(next accesshost.OperationFunc) accesshost.OperationFunc {
			return func(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
				order = append(order, name+"-before")
				key, _ := accesshost.PlatformKeyFromContext(ctx)
				order = append(order, "key:"+key)
				res := next(ctx, req)
				order = append(order, name+"-after")
				return res
			}
		}
	}

	guard, _ := newGuardFixture(t, accesshost.WithMiddleware(mw("outer"), mw("inner")))

	res := guard.Verify(context.Background(), "google-analytics-4", plugin.OperationRequest{
		AccessItemType: manifest.NamedInvite,
	})
	require.True(t, res.Success)

	assert.Equal(t, []string{
		"outer-before", "key:google-analytics-4",
		"inner-before", "key:google-analytics-4",
		"inner-after", "outer-after",
	}, order)
}

// recordingPlugin captures the context and request each operation receives.
type recordingPlugin struct {
	m       *manifest.Manifest
	lastCtx context.Context
	lastReq plugin.OperationRequest
}

func (p *recordingPlugin) Manifest() *manifest.Manifest { return p.m }
func (p *recordingPlugin) AgencyConfigSchema(manifest.AccessItemType) (any, bool) {
	return nil, false
}
func (p *recordingPlugin) ClientTargetSchema(manifest.AccessItemType) (any, bool) {
	return nil, false
}
func (p *recordingPlugin) Instructions(manifest.AccessItemType, map[string]any) ([]plugin.Step, error) {
	return nil, nil
}

func (p *recordingPlugin) record(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	p.lastCtx = ctx
	p.lastReq = req
	return plugin.Succeeded(nil)
}

func (p *recordingPlugin) StartOAuth(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.record(ctx, req)
}
func (p *recordingPlugin) CompleteOAuth(ctx context.Context, req plugin.OperationRequest, _ plugin.OAuthCallback) plugin.OperationResult {
	return p.record(ctx, req)
}
func (p *recordingPlugin) Grant(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.record(ctx, req)
}
func (p *recordingPlugin) Verify(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.record(ctx, req)
}
func (p *recordingPlugin) Revoke(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
	return p.record(ctx, req)
}

type retryCountKey struct{}

func TestOperationGuard_MiddlewareChangesReachPlugin(t *testing.T) {
	rec := &recordingPlugin{m: guardManifest()}
	reg := registry.New()
	require.NoError(t, reg.Register(rec))

	mw := func(next accesshost.OperationFunc) accesshost.OperationFunc {
		return func(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
			if req.Config == nil {
				req.Config = map[string]any{}
			}
			req.Config["requestedBy"] = "middleware"
			return next(context.WithValue(ctx, retryCountKey{}, 2), req)
		}
	}
	guard := accesshost.NewOperationGuard(reg, accesshost.WithMiddleware(mw))

	res := guard.Verify(context.Background(), "google-analytics-4", plugin.OperationRequest{
		AccessItemType: manifest.NamedInvite,
	})
	require.True(t, res.Success)

	require.NotNil(t, rec.lastReq.Config, "the request the middleware built must reach the plugin")
	assert.Equal(t, "middleware", rec.lastReq.Config["requestedBy"])
	assert.Equal(t, 2, rec.lastCtx.Value(retryCountKey{}))

	key, ok := accesshost.PlatformKeyFromContext(rec.lastCtx)
	require.True(t, ok, "platform key must be visible inside the operation")
	assert.Equal(t, "google-analytics-4", key)
}

func TestOperationGuard_MiddlewareSkippedOnRefusal(t *testing.T) {
	called := false
	mw := func(next accesshost.OperationFunc) accesshost.OperationFunc {
		return func(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
			called = true
			return next(ctx, req)
		}
	}

	guard, _ := newGuardFixture(t, accesshost.WithMiddleware(mw))

	guard.Grant(context.Background(), "google-analytics-4", plugin.OperationRequest{
		AccessItemType: manifest.PartnerDelegation,
	})
	assert.False(t, called, "refused operations never enter the middleware chain")
}
