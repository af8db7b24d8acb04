package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// FlushTelemetry stops the metrics listener (if any) and flushes buffered logs.
// Call once on exit, after the prompt loop has returned.
func FlushTelemetry(ctx context.Context, logger *zap.Logger, metricsSrv *http.Server) error {
	var errs []error
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
		}
	}
	if logger != nil {
		if err := logger.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("flush logs: %w", err))
		}
	}
	return errors.Join(errs...)
}
