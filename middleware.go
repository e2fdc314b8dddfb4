package accesshost

import (
	"context"
	"log/slog"
	"time"

	"github.com/accessplane/access-host-sdk/plugin"
)

// OperationFunc is the handler signature plugin network operations are
// dispatched through.
type OperationFunc func(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult

// Middleware wraps an OperationFunc to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion
// model).
type Middleware func(next OperationFunc) OperationFunc

// LoggingMiddleware logs every dispatched operation with its outcome and
// duration.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next OperationFunc) OperationFunc {
		return func(ctx context.Context, req plugin.OperationRequest) plugin.OperationResult {
			start := time.Now()
			res := next(ctx, req)

			platformKey, _ := PlatformKeyFromContext(ctx)
			if res.Success {
				logger.Info("plugin operation completed",
					"platform", platformKey,
					"type", string(req.AccessItemType),
					"duration", time.Since(start))
			} else {
				logger.Warn("plugin operation failed",
					"platform", platformKey,
					"type", string(req.AccessItemType),
					"error_code", res.ErrorCode,
					"error", res.Error,
					"duration", time.Since(start))
			}
			return res
		}
	}
}
