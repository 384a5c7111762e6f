// Package cache provides Redis-backed caching decorators.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"stockflow_backend/internal/feature/analysis/usecase"
	"stockflow_backend/internal/platform/metrics"
)

// MemoizedTextGenerator decorates a TextGenerator with Redis memoization.
// It implements the decorator pattern, transparently deduplicating identical
// prompts without modifying the underlying generator.
type MemoizedTextGenerator struct {
	inner     usecase.TextGenerator
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	metrics   *metrics.Metrics
}

// MemoizedTextGeneratorがTextGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.TextGenerator = (*MemoizedTextGenerator)(nil)

// NewMemoizedTextGenerator decorates a TextGenerator with Redis memoization.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "llm:text".
func NewMemoizedTextGenerator(rdb *redis.Client, ttl time.Duration, inner usecase.TextGenerator, namespace string, m *metrics.Metrics) *MemoizedTextGenerator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if namespace == "" {
		namespace = "llm:text"
	}
	return &MemoizedTextGenerator{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		metrics:   m,
	}
}

// GenerateText returns the memoized text for an identical prompt, falling back
// to the underlying generator on a miss.
func (g *MemoizedTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	// Bypass memoization if Redis is not configured
	if g.rdb == nil {
		out, err := g.inner.GenerateText(ctx, prompt)
		g.metrics.RecordLLMRequest(err != nil)
		return out, err
	}

	key := g.memoKey(prompt)

	// 1) Check memo
	if b, err := g.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		g.metrics.RecordLLMMemoHit()
		return string(b), nil
	}

	// 2) Fallback to the generator
	out, err := g.inner.GenerateText(ctx, prompt)
	g.metrics.RecordLLMRequest(err != nil)
	if err != nil {
		return "", err
	}

	// 3) Store in memo (best effort)
	_ = g.rdb.Set(ctx, key, []byte(out), g.ttl).Err()

	return out, nil
}

// Model returns the underlying generator's model name.
func (g *MemoizedTextGenerator) Model() string {
	return g.inner.Model()
}

// memoKey generates a memo key from the prompt digest. Prompts are long and
// contain characters that are problematic for Redis keys, so only a hash
// goes into the key.
func (g *MemoizedTextGenerator) memoKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return g.namespace + ":" + hex.EncodeToString(sum[:8])
}
