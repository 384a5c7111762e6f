package di

import (
	"context"

	"stockflow_backend/internal/feature/analysis/adapters/gemini"
	"stockflow_backend/internal/feature/analysis/usecase"
	"stockflow_backend/internal/platform/cache"
	"stockflow_backend/internal/platform/metrics"

	"github.com/redis/go-redis/v9"
)

// NewTextGenerator creates the Gemini-backed text generator wrapped in a
// Redis memoization layer. Returns an error when Gemini credentials are
// not configured; the server runs without AI analysis in that case.
func NewTextGenerator(ctx context.Context, rdb *redis.Client, m *metrics.Metrics) (usecase.TextGenerator, error) {
	gen, err := gemini.NewGeminiGenerator(ctx)
	if err != nil {
		return nil, err
	}
	return cache.NewMemoizedTextGenerator(rdb, 0, gen, "", m), nil
}
