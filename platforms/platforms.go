// Package platforms bundles the built-in platform plugins and registers them
// as a set.
package platforms

import (
	"fmt"

	"github.com/accessplane/access-host-sdk/platforms/ga4"
	"github.com/accessplane/access-host-sdk/platforms/googleads"
	"github.com/accessplane/access-host-sdk/platforms/hubspot"
	"github.com/accessplane/access-host-sdk/platforms/metaads"
	"github.com/accessplane/access-host-sdk/platforms/sfmc"
	"github.com/accessplane/access-host-sdk/plugin"
	"github.com/accessplane/access-host-sdk/registry"
)

// All returns one instance of every built-in plugin.
func All() []plugin.Plugin {
	return []plugin.Plugin{
		ga4.New(),
		googleads.New(),
		hubspot.New(),
		metaads.New(),
		sfmc.New(),
	}
}

// RegisterAll registers every built-in plugin with the registry. The first
// registration failure aborts; built-in manifests are expected to always
// pass validation.
func RegisterAll(reg *registry.Registry) error {
	for _, p := range All() {
		if err := reg.Register(p); err != nil {
			return fmt.Errorf("platforms: register %s: %w", p.Manifest().PlatformKey, err)
		}
	}
	return nil
}
