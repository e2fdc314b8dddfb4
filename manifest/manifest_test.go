package manifest_test

import (
	"encoding/json"
	"testing"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCapabilityDecl_DecodeShapes(t *testing.T) {
	t.Run("flat JSON object", func(t *testing.T) {
		var d manifest.CapabilityDecl
		err := json.Unmarshal([]byte(`{
			"clientOAuthSupported": true,
			"canGrantAccess": true,
			"canVerifyAccess": false,
			"requiresEvidenceUpload": false
		}`), &d)
		require.NoError(t, err)

		assert.True(t, d.IsFlat())
		assert.True(t, d.Default.ClientOAuthSupported)
		assert.True(t, d.Default.CanGrantAccess)
		assert.Empty(t, d.Rules)
	})

	t.Run("ruled JSON object", func(t *testing.T) {
		var d manifest.CapabilityDecl
		err := json.Unmarshal([]byte(`{
			"default": {"requiresEvidenceUpload": true},
			"rules": [
				{
					"when": {"pamOwnership": "AGENCY_OWNED"},
					"set": {"canVerifyAccess": true}
				}
			]
		}`), &d)
		require.NoError(t, err)

		assert.False(t, d.IsFlat())
		assert.True(t, d.Default.RequiresEvidenceUpload)
		require.Len(t, d.Rules, 1)
		assert.Equal(t, manifest.AgencyOwned, d.Rules[0].When.PAMOwnership)
		require.NotNil(t, d.Rules[0].Set.CanVerifyAccess)
		assert.True(t, *d.Rules[0].Set.CanVerifyAccess)
	})

	t.Run("rules without default JSON", func(t *testing.T) {
		var d manifest.CapabilityDecl
		err := json.Unmarshal([]byte(`{
			"rules": [
				{
					"when": {"pamOwnership": "AGENCY_OWNED"},
					"set": {"canGrantAccess": true}
				}
			]
		}`), &d)
		require.NoError(t, err)

		assert.False(t, d.IsFlat())
		assert.Equal(t, manifest.AccessTypeCapability{}, d.Default)
		require.Len(t, d.Rules, 1)
		require.NotNil(t, d.Rules[0].Set.CanGrantAccess)
		assert.True(t, *d.Rules[0].Set.CanGrantAccess)
	})

	t.Run("flat YAML mapping", func(t *testing.T) {
		var d manifest.CapabilityDecl
		err := yaml.Unmarshal([]byte("canGrantAccess: true\ncanVerifyAccess: true\n"), &d)
		require.NoError(t, err)

		assert.True(t, d.IsFlat())
		assert.True(t, d.Default.CanGrantAccess)
	})

	t.Run("ruled YAML mapping", func(t *testing.T) {
		src := `
default:
  requiresEvidenceUpload: true
rules:
  - when:
      pamOwnership: CLIENT_OWNED
    set:
      requiresEvidenceUpload: true
`
		var d manifest.CapabilityDecl
		err := yaml.Unmarshal([]byte(src), &d)
		require.NoError(t, err)

		assert.False(t, d.IsFlat())
		require.Len(t, d.Rules, 1)
		assert.Equal(t, manifest.ClientOwned, d.Rules[0].When.PAMOwnership)
	})

	t.Run("rules without default YAML", func(t *testing.T) {
		src := `
rules:
  - when:
      pamOwnership: AGENCY_OWNED
    set:
      canVerifyAccess: true
`
		var d manifest.CapabilityDecl
		err := yaml.Unmarshal([]byte(src), &d)
		require.NoError(t, err)

		assert.False(t, d.IsFlat())
		assert.Equal(t, manifest.AccessTypeCapability{}, d.Default)
		require.Len(t, d.Rules, 1)
	})

	t.Run("round-trips preserve the declared shape", func(t *testing.T) {
		flat, err := json.Marshal(manifest.FlatCapability(manifest.ManualOnly()))
		require.NoError(t, err)
		assert.NotContains(t, string(flat), "default")

		ruled, err := json.Marshal(manifest.RuledCapability(manifest.ManualOnly()))
		require.NoError(t, err)
		assert.Contains(t, string(ruled), "default")
	})
}

func TestSupportedTypes_DecodeShapes(t *testing.T) {
	t.Run("legacy string array JSON", func(t *testing.T) {
		var s manifest.SupportedTypes
		err := json.Unmarshal([]byte(`["NAMED_INVITE", "SHARED_ACCOUNT"]`), &s)
		require.NoError(t, err)

		assert.Equal(t, []manifest.AccessItemType{manifest.NamedInvite, manifest.SharedAccount}, s.Types())
		meta, ok := s.Metadata(manifest.NamedInvite)
		require.True(t, ok)
		assert.Empty(t, meta.DisplayName)
	})

	t.Run("metadata object array JSON", func(t *testing.T) {
		var s manifest.SupportedTypes
		err := json.Unmarshal([]byte(`[
			{"type": "NAMED_INVITE", "displayName": "Named invite", "roleTemplates": ["Viewer"]}
		]`), &s)
		require.NoError(t, err)

		meta, ok := s.Metadata(manifest.NamedInvite)
		require.True(t, ok)
		assert.Equal(t, "Named invite", meta.DisplayName)
		assert.Equal(t, []string{"Viewer"}, meta.RoleTemplates)
	})

	t.Run("legacy scalar sequence YAML", func(t *testing.T) {
		var s manifest.SupportedTypes
		err := yaml.Unmarshal([]byte("- NAMED_INVITE\n- PROXY_TOKEN\n"), &s)
		require.NoError(t, err)
		assert.Equal(t, []manifest.AccessItemType{manifest.NamedInvite, manifest.ProxyToken}, s.Types())
	})

	t.Run("metadata mapping sequence YAML", func(t *testing.T) {
		var s manifest.SupportedTypes
		err := yaml.Unmarshal([]byte("- type: GROUP_ACCOUNT\n  displayName: Team seat\n"), &s)
		require.NoError(t, err)

		meta, ok := s.Metadata(manifest.GroupAccount)
		require.True(t, ok)
		assert.Equal(t, "Team seat", meta.DisplayName)
	})

	t.Run("Contains and Types", func(t *testing.T) {
		s := manifest.SupportedTypes{{Type: manifest.NamedInvite}}
		assert.True(t, s.Contains(manifest.NamedInvite))
		assert.False(t, s.Contains(manifest.SharedAccount))
	})
}

func TestCapabilityOverride_Apply(t *testing.T) {
	yes, no := true, false
	base := manifest.AccessTypeCapability{CanGrantAccess: true, RequiresEvidenceUpload: true}

	got := manifest.CapabilityOverride{
		ClientOAuthSupported:   &yes,
		RequiresEvidenceUpload: &no,
	}.Apply(base)

	assert.True(t, got.ClientOAuthSupported)
	assert.True(t, got.CanGrantAccess, "unset override fields keep prior values")
	assert.False(t, got.RequiresEvidenceUpload)

	// The input record is untouched.
	assert.True(t, base.RequiresEvidenceUpload)
}

func TestManifest_Validate(t *testing.T) {
	valid := func() *manifest.Manifest {
		return &manifest.Manifest{
			PlatformKey: "test-platform",
			Version:     "1.2.3",
			Tier:        1,
			SupportedAccessItemTypes: manifest.SupportedTypes{
				{Type: manifest.NamedInvite},
			},
			AccessTypeCapabilities: map[manifest.AccessItemType]manifest.CapabilityDecl{
				manifest.NamedInvite: manifest.FlatCapability(manifest.ManualOnly()),
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*manifest.Manifest)
		wantErr string
	}{
		{"valid manifest", func(m *manifest.Manifest) {}, ""},
		{"empty platform key", func(m *manifest.Manifest) { m.PlatformKey = "" }, "platform key"},
		{"bad version", func(m *manifest.Manifest) { m.Version = "one.two" }, "invalid version"},
		{"missing version allowed", func(m *manifest.Manifest) { m.Version = "" }, ""},
		{"tier too low", func(m *manifest.Manifest) { m.Tier = 0 }, "tier"},
		{"tier too high", func(m *manifest.Manifest) { m.Tier = 4 }, "tier"},
		{
			"duplicate supported type",
			func(m *manifest.Manifest) {
				m.SupportedAccessItemTypes = append(m.SupportedAccessItemTypes,
					manifest.AccessItemTypeMetadata{Type: manifest.NamedInvite})
			},
			"duplicate supported access-item type",
		},
		{
			"capability for unsupported type",
			func(m *manifest.Manifest) {
				m.AccessTypeCapabilities[manifest.ProxyToken] = manifest.FlatCapability(manifest.ManualOnly())
			},
			"unsupported type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidBreakGlassReason(t *testing.T) {
	for _, r := range manifest.BreakGlassReasons {
		assert.True(t, manifest.ValidBreakGlassReason(string(r)))
	}
	assert.False(t, manifest.ValidBreakGlassReason("JUST_BECAUSE"))
	assert.False(t, manifest.ValidBreakGlassReason(""))
}
