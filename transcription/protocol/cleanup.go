package protocol

import (
	"context"
	"time"

	"github.com/kbukum/scribe/logger"
)

// CleanupTimeout bounds each best-effort delete call.
const CleanupTimeout = 10 * time.Second

// Cleanup runs vendor-side deletes. Each gets its own timeout detached
// from ctx cancellation; failures are logged and swallowed.
func Cleanup(ctx context.Context, log *logger.Logger, vendor string, fns ...func(ctx context.Context) error) {
	if log == nil {
		log = logger.Nop()
	}
	base := context.WithoutCancel(ctx)
	for i, fn := range fns {
		callCtx, cancel := context.WithTimeout(base, CleanupTimeout)
		err := fn(callCtx)
		cancel()
		if err != nil {
			log.Warn("vendor cleanup failed", logger.Fields(
				logger.FieldVendor, vendor,
				logger.FieldOperation, "cleanup",
				"step", i,
				logger.FieldError, err.Error(),
			))
		}
	}
}
