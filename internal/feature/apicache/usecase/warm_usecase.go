package usecase

import (
	"context"
	"fmt"
	"log/slog"

	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	sentity "stockflow_backend/internal/feature/strategy/domain/entity"
	"stockflow_backend/internal/shared/ratelimiter"
)

const (
	warmHistoryDays = 90 // 1銘柄あたりの日足取得本数。戦略判定が必要とする本数をカバーする
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

// StrategySource は売買戦略の取得ポートです。
type StrategySource interface {
	GetStrategy(ctx context.Context, symbol string) (*sentity.Strategy, error)
}

// ExpiredSweeper は期限切れキャッシュ行の一括削除ポートです。
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// WarmUsecase は追跡銘柄のレスポンスキャッシュを事前に温めるユースケースを定義します。
// リードスルーのユースケースをそのまま呼ぶため、取得結果は自動的にキャッシュへ書き込まれます。
type WarmUsecase struct {
	bars        PriceHistorySource
	targets     AnalystTargetSource
	strategies  StrategySource
	sweeper     ExpiredSweeper
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewWarmUsecase は新しい WarmUsecase を作成します。
func NewWarmUsecase(bars PriceHistorySource, targets AnalystTargetSource, strategies StrategySource, sweeper ExpiredSweeper, rateLimiter ratelimiter.RateLimiterInterface) *WarmUsecase {
	return &WarmUsecase{bars: bars, targets: targets, strategies: strategies, sweeper: sweeper, rateLimiter: rateLimiter}
}

// warmOne は1銘柄分の価格履歴・アナリスト目標・売買戦略を順に取得します。
// 履歴か目標の取得に失敗した場合はその銘柄を打ち切ります。続けて戦略を
// 呼ぶとレートリミットを通らないプロバイダ再取得が走るためです。
func (wu *WarmUsecase) warmOne(ctx context.Context, symbol string) error {
	wu.rateLimiter.WaitIfNeeded()
	if _, err := wu.bars.DailyBars(ctx, symbol, warmHistoryDays); err != nil {
		return fmt.Errorf("warm price history: %w", err)
	}

	wu.rateLimiter.WaitIfNeeded()
	if _, err := wu.targets.PriceTargets(ctx, symbol); err != nil {
		return fmt.Errorf("warm analyst targets: %w", err)
	}

	// 戦略は温めた履歴と目標を読むので、ここではプロバイダに出ない
	if _, err := wu.strategies.GetStrategy(ctx, symbol); err != nil {
		return fmt.Errorf("warm strategy: %w", err)
	}
	return nil
}

// WarmAll は指定された全銘柄のキャッシュを温め、最後に期限切れ行を掃除します。
// APIのレートリミットを考慮して、プロバイダへ出るリクエスト間に適切な待機時間を設けます。
func (wu *WarmUsecase) WarmAll(ctx context.Context, symbols []string) error {
	var failed int
	for _, s := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := wu.warmOne(ctx, s); err != nil {
			// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次の銘柄へ進む
			slog.Error("failed to warm symbol", "symbol", s, "error", err)
			failed++
		}
	}

	removed, err := wu.sweeper.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep expired cache rows: %w", err)
	}

	slog.Info("cache warm finished", "symbols", len(symbols), "failed", failed, "expired_removed", removed)
	return nil
}
