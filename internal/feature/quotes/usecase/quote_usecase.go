// Package usecase は株価データ取得と配信のユースケースを提供します。
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"stockflow_backend/internal/feature/quotes/domain/entity"
	"stockflow_backend/internal/platform/metrics"
)

const (
	// DefaultHistoryDays は日足系列のデフォルト取得本数です。
	DefaultHistoryDays = 90
	// MaxHistoryDays は日足系列の最大取得本数です。
	MaxHistoryDays = 5000

	dailyInterval   = "1day"
	historyEndpoint = "price-history"
	targetsEndpoint = "analyst-targets"
)

// QuoteProvider は外部市場データAPIの取得ポートです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type QuoteProvider interface {
	// GetTimeSeries は指定間隔の時系列を古い順で返します。
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Bar, error)
	// GetPriceTarget はアナリストの目標株価コンセンサスを返します。
	GetPriceTarget(ctx context.Context, symbol string) (*entity.AnalystTargets, error)
}

// ResponseCache は取得済みプロバイダレスポンスの読み書きに使うキャッシュポートです。
type ResponseCache interface {
	Get(ctx context.Context, endpoint, symbol string) (json.RawMessage, bool)
	Set(ctx context.Context, endpoint, symbol string, payload any, marketAware bool) error
}

// quoteUsecase はプロバイダとキャッシュを束ねるリードスルー型のユースケースです。
type quoteUsecase struct {
	provider QuoteProvider
	cache    ResponseCache
	metrics  *metrics.Metrics
}

// NewQuoteUsecase は指定された依存でquoteUsecaseの新しいインスタンスを生成します。
func NewQuoteUsecase(provider QuoteProvider, cache ResponseCache, m *metrics.Metrics) *quoteUsecase {
	return &quoteUsecase{provider: provider, cache: cache, metrics: m}
}

// DailyBars は銘柄の日足系列を古い順で返します。キャッシュにあればそれを使い、
// なければプロバイダから取得して結果をキャッシュします。株価は市場が開いている
// 間は動くため、market-awareとして保存します。
func (u *quoteUsecase) DailyBars(ctx context.Context, symbol string, days int) ([]entity.Bar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if days <= 0 || days > MaxHistoryDays {
		days = DefaultHistoryDays
	}

	if raw, ok := u.cache.Get(ctx, historyEndpoint, symbol); ok {
		var bars []entity.Bar
		if err := json.Unmarshal(raw, &bars); err != nil {
			slog.Warn("discarding undecodable cached price history", "symbol", symbol)
		} else if len(bars) >= days {
			// 末尾が直近なので、要求本数だけ新しい側から切り出します。
			return bars[len(bars)-days:], nil
		}
		// キャッシュが要求より短い場合は取り直します。
	}

	bars, err := u.provider.GetTimeSeries(ctx, symbol, dailyInterval, days)
	u.metrics.RecordProviderRequest("time_series", err != nil)
	if err != nil {
		return nil, fmt.Errorf("fetch price history for %s: %w", symbol, err)
	}

	if len(bars) > 0 {
		if err := u.cache.Set(ctx, historyEndpoint, symbol, bars, true); err != nil {
			slog.Warn("price history cache write failed", "symbol", symbol, "error", err)
		}
	}
	return bars, nil
}

// PriceTargets は銘柄のアナリスト目標株価を返します。コンセンサスは日中に
// 動かないため、market-awareにせず保存します。
func (u *quoteUsecase) PriceTargets(ctx context.Context, symbol string) (*entity.AnalystTargets, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if raw, ok := u.cache.Get(ctx, targetsEndpoint, symbol); ok {
		var cached entity.AnalystTargets
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		slog.Warn("discarding undecodable cached analyst targets", "symbol", symbol)
	}

	targets, err := u.provider.GetPriceTarget(ctx, symbol)
	u.metrics.RecordProviderRequest("price_target", err != nil)
	if err != nil {
		return nil, fmt.Errorf("fetch analyst targets for %s: %w", symbol, err)
	}

	if !targets.Empty() {
		if err := u.cache.Set(ctx, targetsEndpoint, symbol, targets, false); err != nil {
			slog.Warn("analyst targets cache write failed", "symbol", symbol, "error", err)
		}
	}
	return targets, nil
}
