// Package sfmc implements the Salesforce Marketing Cloud platform plugin.
//
// The manifest is authored in YAML in its original legacy shape (string-array
// supported types, flat capability blocks) and canonicalized at load, which
// keeps the plugin a faithful regression case for older manifest documents.
package sfmc

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/parser"
	"github.com/accessplane/access-host-sdk/plugin"
)

// PlatformKey is the registry key for Salesforce Marketing Cloud.
const PlatformKey = "salesforce-marketing-cloud"

//go:embed manifest.yaml
var manifestYAML []byte

var loadManifest = sync.OnceValues(func() (*manifest.Manifest, error) {
	m, err := parser.NewYamlManifestParser().Parse(manifestYAML)
	if err != nil {
		return nil, fmt.Errorf("sfmc: embedded manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("sfmc: embedded manifest: %w", err)
	}
	return m, nil
})

// Manifest returns the SFMC declaration parsed from the embedded document.
// The document is compiled into the binary; a parse failure is a build
// defect, so it panics rather than returning an error.
func Manifest() *manifest.Manifest {
	m, err := loadManifest()
	if err != nil {
		panic(err)
	}
	return m
}

// NamedInviteConfig is the agency-side configuration for an SFMC user.
type NamedInviteConfig struct {
	InviteEmail  string `json:"inviteEmail" jsonschema:"required,format=email"`
	BusinessUnit string `json:"businessUnit,omitempty" jsonschema:"description=Business unit MID the user is scoped to"`
}

// ClientTarget identifies the client's SFMC account.
type ClientTarget struct {
	AccountMID string `json:"accountMid" jsonschema:"required,pattern=^[0-9]+$,description=Marketing Cloud account MID"`
}

// Plugin is the manifest-and-instructions-only SFMC plugin.
type Plugin struct {
	manifest *manifest.Manifest
}

// New creates the SFMC plugin.
func New() *Plugin {
	return &Plugin{manifest: Manifest()}
}

func (p *Plugin) Manifest() *manifest.Manifest {
	return p.manifest
}

func (p *Plugin) AgencyConfigSchema(t manifest.AccessItemType) (any, bool) {
	if t == manifest.NamedInvite {
		return NamedInviteConfig{}, true
	}
	return nil, false
}

func (p *Plugin) ClientTargetSchema(t manifest.AccessItemType) (any, bool) {
	return ClientTarget{}, true
}

func (p *Plugin) Instructions(t manifest.AccessItemType, cfg map[string]any) ([]plugin.Step, error) {
	switch t {
	case manifest.NamedInvite:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Create the user",
				Detail: "In Setup → Users for account {{.accountMid}}, create a user for {{.inviteEmail}} and assign the agreed roles.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the Users page showing the new user.",
			},
		).Build(cfg)
	case manifest.SharedAccount:
		return plugin.NewInstructionBuilder(
			plugin.StepTemplate{
				Title:  "Record the break-glass approval",
				Detail: "Shared SFMC logins are break-glass only. Record the approved reason before any credentials move.",
			},
			plugin.StepTemplate{
				Title:  "Hand over credentials securely",
				Detail: "Share the login through the credential vault, never over email or chat.",
			},
			plugin.StepTemplate{
				Title:  "Upload evidence",
				Detail: "Upload a screenshot of the Setup → Users page.",
			},
		).Build(cfg)
	default:
		return nil, fmt.Errorf("sfmc: no instructions for access-item type %s", t)
	}
}
