// Package plugin defines the contract every platform plugin implements: a
// manifest bound to configuration schemas, an instruction builder for manual
// grant flows, and optional network operations guarded by resolved
// capabilities.
package plugin

import (
	"context"

	"github.com/accessplane/access-host-sdk/manifest"
)

// Plugin couples one platform's manifest with its per-type configuration
// schemas and manual-grant instructions. Implementations must be safe for
// concurrent use; the registry hands the same instance to every caller.
type Plugin interface {
	// Manifest returns the platform's static declaration. The returned value
	// must never be mutated.
	Manifest() *manifest.Manifest

	// AgencyConfigSchema returns the schema source (Go struct, raw JSON
	// schema, or map) for the agency-side configuration of one access-item
	// type. ok is false when the type carries no agency configuration.
	AgencyConfigSchema(t manifest.AccessItemType) (model any, ok bool)

	// ClientTargetSchema returns the schema source for the client-side target
	// (account identifiers, property IDs) of one access-item type.
	ClientTargetSchema(t manifest.AccessItemType) (model any, ok bool)

	// Instructions produces the ordered, human-readable steps an operator
	// follows for a manual grant of the given type under the given
	// configuration.
	Instructions(t manifest.AccessItemType, cfg map[string]any) ([]Step, error)
}

// OperationRequest carries the inputs for one programmatic plugin operation.
type OperationRequest struct {
	AccessItemType manifest.AccessItemType
	Config         map[string]any
	Target         map[string]any
}

// OAuthCallback carries the parameters returned by the platform's OAuth
// redirect.
type OAuthCallback struct {
	State string
	Code  string
}

// OperationResult is the structured outcome of a network-bound plugin
// operation. Failures are reported here, never as panics or fatal errors;
// callers retry or fall back to manual instructions.
type OperationResult struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	ErrorCode string         `json:"errorCode,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Succeeded builds a successful result with optional detail payload.
func Succeeded(details map[string]any) OperationResult {
	return OperationResult{Success: true, Details: details}
}

// Failed builds a failed result with a machine-readable code and a
// human-readable message.
func Failed(code, message string) OperationResult {
	return OperationResult{Success: false, Error: message, ErrorCode: code}
}

// ErrCodeUnsupported marks an operation the resolved capability set does not
// permit for the platform and type.
const ErrCodeUnsupported = "OPERATION_UNSUPPORTED"

// Transport is the uniform interface plugins call platform APIs through.
// Each plugin builds its own platform-specific payloads; the transport only
// moves them. Implementations live outside the core engine.
type Transport interface {
	// Do performs one named platform API call and returns its decoded
	// response.
	Do(ctx context.Context, operation string, payload map[string]any) (map[string]any, error)
}

// ErrCodeTransportUnconfigured marks a programmatic operation attempted on a
// plugin constructed without a transport.
const ErrCodeTransportUnconfigured = "TRANSPORT_UNCONFIGURED"

// NetworkOperator is the optional interface a plugin implements when its
// platform supports programmatic OAuth, grant, verify, or revoke. A plugin
// must not attempt an operation its own manifest marks unsupported for the
// given type and context; the host-side guard enforces this as well.
type NetworkOperator interface {
	StartOAuth(ctx context.Context, req OperationRequest) OperationResult
	CompleteOAuth(ctx context.Context, req OperationRequest, cb OAuthCallback) OperationResult
	Grant(ctx context.Context, req OperationRequest) OperationResult
	Verify(ctx context.Context, req OperationRequest) OperationResult
	Revoke(ctx context.Context, req OperationRequest) OperationResult
}
