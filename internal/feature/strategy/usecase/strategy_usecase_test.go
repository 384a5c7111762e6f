package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	"stockflow_backend/internal/feature/strategy/domain/entity"
	"stockflow_backend/internal/feature/strategy/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBarSource はPriceHistorySourceインターフェースのモック実装です。
type mockBarSource struct {
	DailyBarsFunc func(ctx context.Context, symbol string, days int) ([]qentity.Bar, error)
	Calls         int
}

func (m *mockBarSource) DailyBars(ctx context.Context, symbol string, days int) ([]qentity.Bar, error) {
	m.Calls++
	if m.DailyBarsFunc != nil {
		return m.DailyBarsFunc(ctx, symbol, days)
	}
	return nil, nil
}

// mockTargetSource はAnalystTargetSourceインターフェースのモック実装です。
type mockTargetSource struct {
	PriceTargetsFunc func(ctx context.Context, symbol string) (*qentity.AnalystTargets, error)
}

func (m *mockTargetSource) PriceTargets(ctx context.Context, symbol string) (*qentity.AnalystTargets, error) {
	if m.PriceTargetsFunc != nil {
		return m.PriceTargetsFunc(ctx, symbol)
	}
	return nil, nil
}

// mockResponseCache はResponseCacheインターフェースのモック実装です。
type mockResponseCache struct {
	GetFunc  func(ctx context.Context, endpoint, symbol string) (json.RawMessage, bool)
	SetFunc  func(ctx context.Context, endpoint, symbol string, payload any, marketAware bool) error
	SetCalls int
}

func (m *mockResponseCache) Get(ctx context.Context, endpoint, symbol string) (json.RawMessage, bool) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, endpoint, symbol)
	}
	return nil, false
}

func (m *mockResponseCache) Set(ctx context.Context, endpoint, symbol string, payload any, marketAware bool) error {
	m.SetCalls++
	if m.SetFunc != nil {
		return m.SetFunc(ctx, endpoint, symbol, payload, marketAware)
	}
	return nil
}

// TestStrategyUsecase_GetStrategy_CacheMiss はミス時に計算とキャッシュ書き込みが走ることを検証します。
func TestStrategyUsecase_GetStrategy_CacheMiss(t *testing.T) {
	t.Parallel()

	bars := &mockBarSource{
		DailyBarsFunc: func(_ context.Context, symbol string, days int) ([]qentity.Bar, error) {
			assert.Equal(t, "AAPL", symbol, "symbol should be normalized before the fetch")
			assert.Equal(t, 90, days)
			return linearBars(60, 100, 0.5, 1_000_000), nil
		},
	}
	targets := &mockTargetSource{
		PriceTargetsFunc: func(_ context.Context, _ string) (*qentity.AnalystTargets, error) {
			return &qentity.AnalystTargets{Mean: fptr(150.0)}, nil
		},
	}

	var storedEndpoint string
	var storedAware bool
	var storedPayload any
	cache := &mockResponseCache{
		SetFunc: func(_ context.Context, endpoint, symbol string, payload any, marketAware bool) error {
			storedEndpoint = endpoint
			storedAware = marketAware
			storedPayload = payload
			assert.Equal(t, "AAPL", symbol)
			return nil
		},
	}

	uc := usecase.NewStrategyUsecase(bars, targets, cache)

	st, err := uc.GetStrategy(context.Background(), "  aapl ")
	require.NoError(t, err)
	require.NotNil(t, st)

	assert.Equal(t, "AAPL", st.Ticker)
	assert.Equal(t, entity.StrategyLong, st.StrategyType)

	assert.Equal(t, 1, cache.SetCalls, "a computed strategy should be cached")
	assert.Equal(t, "trading-strategy", storedEndpoint)
	assert.True(t, storedAware, "strategies are market-aware")
	assert.Same(t, st, storedPayload, "the returned strategy is what gets cached")
}

// TestStrategyUsecase_GetStrategy_CacheHit はヒット時に上流へ問い合わせないことを検証します。
func TestStrategyUsecase_GetStrategy_CacheHit(t *testing.T) {
	t.Parallel()

	cached := usecase.Classify("AAPL", linearBars(60, 100, 0.5, 1_000_000), nil)
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	bars := &mockBarSource{
		DailyBarsFunc: func(context.Context, string, int) ([]qentity.Bar, error) {
			t.Error("price history must not be fetched on a cache hit")
			return nil, nil
		},
	}
	cache := &mockResponseCache{
		GetFunc: func(_ context.Context, endpoint, symbol string) (json.RawMessage, bool) {
			assert.Equal(t, "trading-strategy", endpoint)
			assert.Equal(t, "AAPL", symbol)
			return raw, true
		},
	}

	uc := usecase.NewStrategyUsecase(bars, &mockTargetSource{}, cache)

	st, err := uc.GetStrategy(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, cached, st)
	assert.Zero(t, cache.SetCalls, "a cache hit must not rewrite the row")
}

// TestStrategyUsecase_GetStrategy_CorruptCacheRecomputes は壊れたキャッシュを無視して再計算することを検証します。
func TestStrategyUsecase_GetStrategy_CorruptCacheRecomputes(t *testing.T) {
	t.Parallel()

	bars := &mockBarSource{
		DailyBarsFunc: func(context.Context, string, int) ([]qentity.Bar, error) {
			return linearBars(60, 100, 0.5, 1_000_000), nil
		},
	}
	cache := &mockResponseCache{
		GetFunc: func(context.Context, string, string) (json.RawMessage, bool) {
			return json.RawMessage(`{not json`), true
		},
	}

	uc := usecase.NewStrategyUsecase(bars, &mockTargetSource{}, cache)

	st, err := uc.GetStrategy(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, entity.StrategyLong, st.StrategyType)
	assert.Equal(t, 1, bars.Calls)
}

// TestStrategyUsecase_GetStrategy_FetchFailure は上流障害がWAITに吸収されることを検証します。
func TestStrategyUsecase_GetStrategy_FetchFailure(t *testing.T) {
	t.Parallel()

	bars := &mockBarSource{
		DailyBarsFunc: func(context.Context, string, int) ([]qentity.Bar, error) {
			return nil, errors.New("upstream timeout")
		},
	}
	targets := &mockTargetSource{
		PriceTargetsFunc: func(context.Context, string) (*qentity.AnalystTargets, error) {
			return nil, errors.New("upstream timeout")
		},
	}
	cache := &mockResponseCache{}

	uc := usecase.NewStrategyUsecase(bars, targets, cache)

	st, err := uc.GetStrategy(context.Background(), "AAPL")
	require.NoError(t, err, "upstream failures must not surface as errors")
	require.NotNil(t, st)

	assert.Equal(t, entity.StrategyWait, st.StrategyType)
	assert.Equal(t, entity.ConfidenceLow, st.Confidence)
	assert.NotEmpty(t, st.Error)
	assert.Zero(t, cache.SetCalls, "degraded strategies must not be cached")
}

// TestStrategyUsecase_GetStrategy_CacheWriteFailureIgnored はキャッシュ書き込み失敗が結果に影響しないことを検証します。
func TestStrategyUsecase_GetStrategy_CacheWriteFailureIgnored(t *testing.T) {
	t.Parallel()

	bars := &mockBarSource{
		DailyBarsFunc: func(context.Context, string, int) ([]qentity.Bar, error) {
			return linearBars(60, 100, 0.5, 1_000_000), nil
		},
	}
	cache := &mockResponseCache{
		SetFunc: func(context.Context, string, string, any, bool) error {
			return errors.New("disk full")
		},
	}

	uc := usecase.NewStrategyUsecase(bars, &mockTargetSource{}, cache)

	st, err := uc.GetStrategy(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, entity.StrategyLong, st.StrategyType)
}
