package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Bahjat/seo-insight/internal/model"
	"github.com/Bahjat/seo-insight/internal/platform/errs"
	"github.com/Bahjat/seo-insight/internal/platform/requestid"
)

// Service orchestrates a PageInsightProvider and logs results.
type Service struct {
	provider PageInsightProvider
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider.
func NewService(provider PageInsightProvider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Analyze delegates to the provider and logs the outcome.
func (s *Service) Analyze(ctx context.Context, targetURL string) (*model.Report, error) {
	logger := s.logger.With("url", targetURL, "request_id", requestid.FromContext(ctx))
	start := time.Now()

	report, err := s.provider.Analyze(ctx, targetURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: "Analysis timed out. The target URL may be slow to respond.",
				Cause:   err,
			}
		}

		attrs := []any{"error", err, "kind", errs.KindOf(err).String()}
		var appErr *errs.AppError
		if errors.As(err, &appErr) && appErr.UpstreamStatus != 0 {
			attrs = append(attrs, "target_status", appErr.UpstreamStatus)
		}
		logger.Error("analysis failed", attrs...)
		return nil, err
	}

	logger.Info("analysis complete",
		"overall_score", report.Results.Overall.Value,
		"grade", report.Results.Overall.Grade.Label,
		"categories", len(report.Results.Categories),
		"cached", report.Cached,
		"duration", time.Since(start).String(),
	)
	return report, nil
}
