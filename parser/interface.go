package parser

import "github.com/accessplane/access-host-sdk/manifest"

// ManifestParser parses raw manifest bytes into a canonical Manifest.
type ManifestParser interface {
	// Parse unmarshals manifest bytes, canonicalizing legacy shapes.
	Parse(data []byte) (*manifest.Manifest, error)
}
