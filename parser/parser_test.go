package parser_test

import (
	"testing"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYamlManifestParser(t *testing.T) {
	src := `
platformKey: google-ads
displayName: Google Ads
version: 2.1.0
tier: 1
supportedAccessItemTypes:
  - PARTNER_DELEGATION
  - NAMED_INVITE
accessTypeCapabilities:
  PARTNER_DELEGATION:
    default:
      requiresEvidenceUpload: true
    rules:
      - when:
          pamOwnership: AGENCY_OWNED
        set:
          canVerifyAccess: true
`

	m, err := parser.NewYamlManifestParser().Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "google-ads", m.PlatformKey)
	assert.Equal(t,
		[]manifest.AccessItemType{manifest.PartnerDelegation, manifest.NamedInvite},
		m.SupportedAccessItemTypes.Types())

	decl := m.AccessTypeCapabilities[manifest.PartnerDelegation]
	assert.False(t, decl.IsFlat())
	require.Len(t, decl.Rules, 1)
	assert.Equal(t, manifest.AgencyOwned, decl.Rules[0].When.PAMOwnership)
}

func TestYamlManifestParser_Invalid(t *testing.T) {
	_, err := parser.NewYamlManifestParser().Parse([]byte("platformKey: ["))
	assert.Error(t, err)
}

func TestJSONManifestParser(t *testing.T) {
	src := `{
		"platformKey": "hubspot",
		"version": "1.7.3",
		"tier": 2,
		"supportedAccessItemTypes": [
			{"type": "NAMED_INVITE", "roleTemplates": ["Sales"]}
		],
		"accessTypeCapabilities": {
			"NAMED_INVITE": {"canGrantAccess": true, "canVerifyAccess": true}
		}
	}`

	m, err := parser.NewJSONManifestParser().Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "hubspot", m.PlatformKey)
	assert.Equal(t, []string{"Sales"}, m.SupportedAccessItemTypes[0].RoleTemplates)

	decl := m.AccessTypeCapabilities[manifest.NamedInvite]
	assert.True(t, decl.IsFlat())
	assert.True(t, decl.Default.CanGrantAccess)
}

func TestJSONManifestParser_Invalid(t *testing.T) {
	_, err := parser.NewJSONManifestParser().Parse([]byte("{"))
	assert.Error(t, err)
}
