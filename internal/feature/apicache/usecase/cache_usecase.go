package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stockflow_backend/internal/feature/apicache/domain/entity"
	"stockflow_backend/internal/platform/metrics"
)

// CacheRepository はキャッシュ行の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type CacheRepository interface {
	// Find は(endpoint, symbol)キーの一意な行を取得します。
	// 行が存在しない場合、ErrEntryNotFoundを返します。
	Find(ctx context.Context, endpoint, symbol string) (*entity.Entry, error)

	// Upsert は行を挿入または置換します（同一キーの行は1つだけ残ります）。
	Upsert(ctx context.Context, e *entity.Entry) error

	// Delete は(endpoint, symbol)キーの行を削除します。
	Delete(ctx context.Context, endpoint, symbol string) error

	// DeleteMatching は指定フィルターに一致する行を削除し、削除数を返します。
	// endpoint・symbolは空文字列でフィルター無効（両方空なら全削除）。
	DeleteMatching(ctx context.Context, endpoint, symbol string) (int64, error)

	// DeleteStale は期限切れ行を一括削除し、削除数を返します。
	// market_aware行はawareCutoffより古いもの、それ以外はplainCutoffより古いものが対象です。
	DeleteStale(ctx context.Context, awareCutoff, plainCutoff time.Time) (int64, error)

	// CountAll は全行数を返します。
	CountAll(ctx context.Context) (int64, error)

	// CountFresh は現時点で有効な行数を返します。
	CountFresh(ctx context.Context, awareCutoff, plainCutoff time.Time) (int64, error)

	// FreshByEndpoint は有効な行をエンドポイント別に集計し、件数の降順で返します。
	FreshByEndpoint(ctx context.Context, awareCutoff, plainCutoff time.Time) ([]entity.EndpointCount, error)
}

// MarketCalendar は市場の立会状態を判定するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketCalendar interface {
	IsOpen(t time.Time) bool
	// StatusString は運用表示用のセッション状態文字列を返します。
	StatusString(t time.Time) string
}

// cacheUsecase は市場連動の有効期限付きキャッシュ操作を実装します。
// キャッシュは常にベストエフォートであり、ストレージ障害が呼び出し元の
// フレッシュ取得を妨げることはありません。
type cacheUsecase struct {
	repo    CacheRepository
	market  MarketCalendar
	metrics *metrics.Metrics
}

// NewCacheUsecase はcacheUsecaseの新しいインスタンスを生成します。
// metricsはnil可です。
func NewCacheUsecase(repo CacheRepository, market MarketCalendar, m *metrics.Metrics) *cacheUsecase {
	return &cacheUsecase{repo: repo, market: market, metrics: m}
}

// normalizeSymbol はティッカーをキー用に正規化します（前後空白除去＋大文字化）。
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// cutoffs は現時点の有効期限しきい値を返します。
// これより古いcached_atを持つ行は期限切れです。
func (u *cacheUsecase) cutoffs(now time.Time) (aware, plain time.Time) {
	plain = now.Add(-entity.MaxAge)
	aware = plain
	if u.market.IsOpen(now) {
		aware = now.Add(-entity.OpenSessionTTL)
	}
	return aware, plain
}

// Get はキーに対応する有効なペイロードを返します。
// 行が無い・期限切れ・ストレージ障害はいずれもキャッシュミス（ok=false）として扱います。
// 期限切れ行は読み取り時に副作用として削除されます。
func (u *cacheUsecase) Get(ctx context.Context, endpoint, symbol string) (json.RawMessage, bool) {
	sym := normalizeSymbol(symbol)

	e, err := u.repo.Find(ctx, endpoint, sym)
	if err != nil {
		if !errors.Is(err, ErrEntryNotFound) {
			// ストレージ障害はミス扱い。呼び出し元はフレッシュ取得にフォールバックする。
			slog.Warn("cache lookup failed; treating as miss", "endpoint", endpoint, "symbol", sym, "error", err)
		}
		u.metrics.RecordCacheMiss(endpoint)
		return nil, false
	}

	now := time.Now()
	if e.Expired(now, u.market.IsOpen(now)) {
		if derr := u.repo.Delete(ctx, endpoint, sym); derr != nil {
			slog.Warn("failed to purge expired cache row", "endpoint", endpoint, "symbol", sym, "error", derr)
		} else {
			u.metrics.RecordCacheEviction()
		}
		u.metrics.RecordCacheMiss(endpoint)
		return nil, false
	}

	u.metrics.RecordCacheHit(endpoint)
	return e.Payload, true
}

// Set はペイロードをJSONに直列化してキーへupsertします。
// 直列化できないペイロードとストレージ障害はエラーとして返します（呼び出し元は書き込み失敗を無視してよい）。
func (u *cacheUsecase) Set(ctx context.Context, endpoint, symbol string, payload any, marketAware bool) error {
	sym := normalizeSymbol(symbol)

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("cache payload is not serializable", "endpoint", endpoint, "symbol", sym, "error", err)
		return fmt.Errorf("serialize cache payload for %s/%s: %w", endpoint, sym, err)
	}

	e := &entity.Entry{
		Endpoint:    endpoint,
		Symbol:      sym,
		Payload:     data,
		CachedAt:    time.Now().UTC(),
		MarketAware: marketAware,
	}
	if err := u.repo.Upsert(ctx, e); err != nil {
		slog.Error("cache write failed", "endpoint", endpoint, "symbol", sym, "error", err)
		return fmt.Errorf("store cache entry for %s/%s: %w", endpoint, sym, err)
	}
	return nil
}

// Clear は指定フィルターに一致する行を削除し、削除数を返します。
// endpoint・symbolは省略可能（空文字列）で、両方省略すると全行が対象になります。
func (u *cacheUsecase) Clear(ctx context.Context, endpoint, symbol string) (int64, error) {
	sym := ""
	if symbol != "" {
		sym = normalizeSymbol(symbol)
	}
	n, err := u.repo.DeleteMatching(ctx, endpoint, sym)
	if err != nil {
		return 0, fmt.Errorf("clear cache rows: %w", err)
	}
	slog.Info("cache cleared", "endpoint", endpoint, "symbol", sym, "removed", n)
	return n, nil
}

// ClearSymbol は全エンドポイント横断で指定銘柄の行を削除します。
func (u *cacheUsecase) ClearSymbol(ctx context.Context, symbol string) (int64, error) {
	return u.Clear(ctx, "", symbol)
}

// SweepExpired は期限切れ行を一括削除します。
// market_aware行には完全な有効期限ルールを、それ以外には24時間ルールのみを適用します。
func (u *cacheUsecase) SweepExpired(ctx context.Context) (int64, error) {
	aware, plain := u.cutoffs(time.Now())
	n, err := u.repo.DeleteStale(ctx, aware, plain)
	if err != nil {
		return 0, fmt.Errorf("sweep expired cache rows: %w", err)
	}
	u.metrics.RecordCacheSwept(n)
	slog.Info("cache sweep finished", "removed", n)
	return n, nil
}

// Stats は現時点のキャッシュ統計を返します。
func (u *cacheUsecase) Stats(ctx context.Context) (*entity.Stats, error) {
	now := time.Now()
	aware, plain := u.cutoffs(now)

	total, err := u.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cache rows: %w", err)
	}
	valid, err := u.repo.CountFresh(ctx, aware, plain)
	if err != nil {
		return nil, fmt.Errorf("count fresh cache rows: %w", err)
	}
	byEndpoint, err := u.repo.FreshByEndpoint(ctx, aware, plain)
	if err != nil {
		return nil, fmt.Errorf("group cache rows by endpoint: %w", err)
	}

	return &entity.Stats{
		Total:        total,
		Valid:        valid,
		Expired:      total - valid,
		ByEndpoint:   byEndpoint,
		MarketStatus: u.market.StatusString(now),
	}, nil
}
