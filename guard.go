// Package accesshost wires the manifest-driven capability engine to plugin
// network operations: before a programmatic OAuth, grant, verify, or revoke
// is dispatched, the guard resolves the effective capability set and refuses
// anything the platform does not support, as a structured result rather than
// an error.
package accesshost

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/accessplane/access-host-sdk/capability"
	"github.com/accessplane/access-host-sdk/plugin"
	"github.com/accessplane/access-host-sdk/registry"
)

// Operation names one programmatic plugin operation.
type Operation string

const (
	OpStartOAuth    Operation = "start_oauth"
	OpCompleteOAuth Operation = "complete_oauth"
	OpGrant         Operation = "grant"
	OpVerify        Operation = "verify"
	OpRevoke        Operation = "revoke"
)

// DenialHandler is called when the guard refuses an operation. It allows
// custom logging or auditing.
type DenialHandler func(ctx context.Context, platformKey string, op Operation, reason string)

// OperationGuard dispatches plugin network operations through capability
// checks. It never throws for expected domain conditions: unknown platforms
// and unsupported operations come back as failed OperationResults.
type OperationGuard struct {
	registry      *registry.Registry
	denialHandler DenialHandler
	middlewares   []Middleware
	logger        *slog.Logger
}

// GuardOption configures an OperationGuard.
type GuardOption func(*OperationGuard)

// WithDenialHandler sets the handler invoked on refused operations.
func WithDenialHandler(handler DenialHandler) GuardOption {
	return func(g *OperationGuard) { g.denialHandler = handler }
}

// WithMiddleware appends middleware applied to every dispatched operation,
// in FIFO (onion) order.
func WithMiddleware(mw ...Middleware) GuardOption {
	return func(g *OperationGuard) { g.middlewares = append(g.middlewares, mw...) }
}

// WithLogger sets the guard's logger.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *OperationGuard) { g.logger = l }
}

// NewOperationGuard creates a guard over the given plugin registry.
func NewOperationGuard(reg *registry.Registry, opts ...GuardOption) *OperationGuard {
	g := &OperationGuard{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// StartOAuth begins the client OAuth flow, if the platform supports it for
// the requested type and configuration.
func (g *OperationGuard) StartOAuth(ctx context.Context, platformKey string, req plugin.OperationRequest) plugin.OperationResult {
	return g.dispatch(ctx, platformKey, OpStartOAuth, req, func(op plugin.NetworkOperator, ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
		return op.StartOAuth(ctx, req)
	})
}

// CompleteOAuth finishes the client OAuth flow with the redirect callback.
func (g *OperationGuard) CompleteOAuth(ctx context.Context, platformKey string, req plugin.OperationRequest, cb plugin.OAuthCallback) plugin.OperationResult {
	return g.dispatch(ctx, platformKey, OpCompleteOAuth, req, func(op plugin.NetworkOperator, ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
		return op.CompleteOAuth(ctx, req, cb)
	})
}

// Grant programmatically grants access.
func (g *OperationGuard) Grant(ctx context.Context, platformKey string, req plugin.OperationRequest) plugin.OperationResult {
	return g.dispatch(ctx, platformKey, OpGrant, req, func(op plugin.NetworkOperator, ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
		return op.Grant(ctx, req)
	})
}

// Verify programmatically verifies previously granted access.
func (g *OperationGuard) Verify(ctx context.Context, platformKey string, req plugin.OperationRequest) plugin.OperationResult {
	return g.dispatch(ctx, platformKey, OpVerify, req, func(op plugin.NetworkOperator, ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
		return op.Verify(ctx, req)
	})
}

// Revoke programmatically revokes access. Revocation travels the grant
// channel, so it requires the grant capability.
func (g *OperationGuard) Revoke(ctx context.Context, platformKey string, req plugin.OperationRequest) plugin.OperationResult {
	return g.dispatch(ctx, platformKey, OpRevoke, req, func(op plugin.NetworkOperator, ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
		return op.Revoke(ctx, req)
	})
}

func (g *OperationGuard) dispatch(
	ctx context.Context,
	platformKey string,
	op Operation,
	req plugin.OperationRequest,
	invoke func(plugin.NetworkOperator, context.Context, plugin.OperationRequest) plugin.OperationResult,
) plugin.OperationResult {
	p, ok := g.registry.Get(platformKey)
	if !ok {
		return g.deny(ctx, platformKey, op, "PLUGIN_NOT_FOUND",
			fmt.Sprintf("Plugin not found: %s", platformKey))
	}

	caps := capability.Resolve(p.Manifest(), req.AccessItemType, capability.ContextFromMap(req.Config))
	if !allows(caps.ClientOAuthSupported, caps.CanGrantAccess, caps.CanVerifyAccess, op) {
		return g.deny(ctx, platformKey, op, plugin.ErrCodeUnsupported,
			fmt.Sprintf("%s is not supported for platform %s, type %s", op, platformKey, req.AccessItemType))
	}

	operator, ok := p.(plugin.NetworkOperator)
	if !ok {
		return g.deny(ctx, platformKey, op, plugin.ErrCodeUnsupported,
			fmt.Sprintf("platform %s has no programmatic operations", platformKey))
	}

	handler := func(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
		return invoke(operator, ctx, req)
	}
	for i := len(g.middlewares) - 1; i >= 0; i-- {
		handler = g.middlewares[i](handler)
	}
	return handler(WithPlatformKey(ctx, platformKey), req)
}

func allows(oauth, grant, verify bool, op Operation) bool {
	switch op {
	case OpStartOAuth, OpCompleteOAuth:
		return oauth
	case OpGrant, OpRevoke:
		return grant
	case OpVerify:
		return verify
	default:
		return false
	}
}

func (g *OperationGuard) deny(ctx context.Context, platformKey string, op Operation, code, message string) plugin.OperationResult {
	if g.denialHandler != nil {
		g.denialHandler(ctx, platformKey, op, message)
	}
	g.logger.Warn("operation refused", "platform", platformKey, "operation", string(op), "reason", message)
	return plugin.Failed(code, message)
}

// Context helpers for platform key propagation.
type guardContextKey struct {
	name string
}

var platformKeyContextKey = &guardContextKey{name: "platform_key"}

// WithPlatformKey adds the platform key to the context.
func WithPlatformKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, platformKeyContextKey, key)
}

// PlatformKeyFromContext retrieves the platform key from the context.
func PlatformKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(platformKeyContextKey).(string)
	return key, ok
}
