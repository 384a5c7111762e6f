// Package usecase は売買戦略の導出と配信のユースケースを提供します。
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	"stockflow_backend/internal/feature/strategy/domain/entity"
)

const (
	// strategyEndpoint はキャッシュ上の論理リソース名です。
	strategyEndpoint = "trading-strategy"
	// historyDays は分類に使う日足の取得本数です。SMA50と比較して十分な余裕を持たせます。
	historyDays = 90
)

// PriceHistorySource は日足系列の取得ポートです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PriceHistorySource interface {
	DailyBars(ctx context.Context, symbol string, days int) ([]qentity.Bar, error)
}

// AnalystTargetSource はアナリスト目標株価の取得ポートです。
type AnalystTargetSource interface {
	PriceTargets(ctx context.Context, symbol string) (*qentity.AnalystTargets, error)
}

// ResponseCache は計算済み戦略の読み書きに使うキャッシュポートです。
type ResponseCache interface {
	Get(ctx context.Context, endpoint, symbol string) (json.RawMessage, bool)
	Set(ctx context.Context, endpoint, symbol string, payload any, marketAware bool) error
}

// strategyUsecase はキャッシュ・市場データ・分類器を束ねるユースケースです。
type strategyUsecase struct {
	bars    PriceHistorySource
	targets AnalystTargetSource
	cache   ResponseCache
}

// NewStrategyUsecase は指定された依存でstrategyUsecaseの新しいインスタンスを生成します。
func NewStrategyUsecase(bars PriceHistorySource, targets AnalystTargetSource, cache ResponseCache) *strategyUsecase {
	return &strategyUsecase{bars: bars, targets: targets, cache: cache}
}

// GetStrategy は銘柄の売買戦略を返します。キャッシュにあればそれを使い、
// なければ系列とアナリスト目標を取得して分類し、結果をキャッシュします。
// 上流の失敗はWAIT戦略に吸収されるため、このメソッドがエラーを返すことはまれです。
func (u *strategyUsecase) GetStrategy(ctx context.Context, symbol string) (*entity.Strategy, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if raw, ok := u.cache.Get(ctx, strategyEndpoint, symbol); ok {
		var cached entity.Strategy
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		slog.Warn("discarding undecodable cached strategy", "symbol", symbol)
	}

	bars, err := u.bars.DailyBars(ctx, symbol, historyDays)
	if err != nil {
		slog.Warn("price history fetch failed", "symbol", symbol, "error", err)
		bars = nil
	}

	var targets *qentity.AnalystTargets
	if got, err := u.targets.PriceTargets(ctx, symbol); err != nil {
		slog.Warn("analyst targets fetch failed", "symbol", symbol, "error", err)
	} else {
		targets = got
	}

	st := Classify(symbol, bars, targets)

	// 上流障害によるWAITはキャッシュしない。次のリクエストで再試行させます。
	if st.Error == "" {
		if err := u.cache.Set(ctx, strategyEndpoint, symbol, st, true); err != nil {
			slog.Warn("strategy cache write failed", "symbol", symbol, "error", err)
		}
	}

	return st, nil
}
