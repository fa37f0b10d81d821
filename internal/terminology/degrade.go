package terminology

import (
	"context"
	"errors"
	"log/slog"
)

// LogDegrade records a lookup failure that degrades the affected item to
// empty codes instead of aborting the run. Authentication failures are
// logged at error level so they stand out from ordinary transport noise.
func LogDegrade(ctx context.Context, logger *slog.Logger, item string, err error) {
	if errors.Is(err, ErrAuthentication) {
		logger.ErrorContext(
			ctx, "terminology authentication failed, codes degraded",
			"item", item,
			"error", err,
		)
		return
	}

	logger.WarnContext(
		ctx, "terminology lookup degraded",
		"item", item,
		"error", err,
	)
}
