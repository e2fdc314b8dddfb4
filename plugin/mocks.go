package plugin

import (
	"context"

	"github.com/accessplane/access-host-sdk/manifest"
)

// MockPlugin implements Plugin (and optionally NetworkOperator) for testing.
type MockPlugin struct {
	ManifestValue *manifest.Manifest

	AgencySchemas map[manifest.AccessItemType]any
	TargetSchemas map[manifest.AccessItemType]any

	Steps    []Step
	StepsErr error

	// Results returned from the network operations below.
	GrantResult  OperationResult
	VerifyResult OperationResult
	RevokeResult OperationResult
	OAuthResult  OperationResult

	GrantCalled  bool
	VerifyCalled bool
	RevokeCalled bool
}

func (m *MockPlugin) Manifest() *manifest.Manifest {
	return m.ManifestValue
}

func (m *MockPlugin) AgencyConfigSchema(t manifest.AccessItemType) (any, bool) {
	s, ok := m.AgencySchemas[t]
	return s, ok
}

func (m *MockPlugin) ClientTargetSchema(t manifest.AccessItemType) (any, bool) {
	s, ok := m.TargetSchemas[t]
	return s, ok
}

func (m *MockPlugin) Instructions(t manifest.AccessItemType, cfg map[string]any) ([]Step, error) {
	if m.StepsErr != nil {
		return nil, m.StepsErr
	}
	return m.Steps, nil
}

func (m *MockPlugin) StartOAuth(ctx context.Context, req OperationRequest) OperationResult {
	return m.OAuthResult
}

func (m *MockPlugin) CompleteOAuth(ctx context.Context, req OperationRequest, cb OAuthCallback) OperationResult {
	return m.OAuthResult
}

func (m *MockPlugin) Grant(ctx context.Context, req OperationRequest) OperationResult {
	m.GrantCalled = true
	return m.GrantResult
}

func (m *MockPlugin) Verify(ctx context.Context, req OperationRequest) OperationResult {
	m.VerifyCalled = true
	return m.VerifyResult
}

func (m *MockPlugin) Revoke(ctx context.Context, req OperationRequest) OperationResult {
	m.RevokeCalled = true
	return m.RevokeResult
}
