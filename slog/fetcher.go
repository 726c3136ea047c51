// Package slog provides logging decorators for the root package
// interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/doccache"
)

// Ensure LoggingFetcher implements doccache.Fetcher.
var _ doccache.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with timing and outcome logging.
type LoggingFetcher struct {
	next   doccache.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next doccache.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string, cond doccache.Conditional) (*doccache.FetchResult, error) {
	begin := time.Now()
	result, err := f.next.Fetch(ctx, url, cond)
	if err != nil {
		f.logger.Error("fetch failed",
			"url", url,
			"code", doccache.ErrorCode(err),
			"duration", time.Since(begin),
			"error", err,
		)
		return nil, err
	}

	f.logger.Info("fetch",
		"url", url,
		"contentType", result.ContentType,
		"bytes", len(result.Content),
		"notModified", result.NotModified,
		"duration", time.Since(begin),
	)
	return result, nil
}
