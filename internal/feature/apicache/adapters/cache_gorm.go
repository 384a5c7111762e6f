package adapters

import (
	"context"
	"errors"
	"time"

	"stockflow_backend/internal/feature/apicache/domain/entity"
	"stockflow_backend/internal/feature/apicache/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// freshPredicate matches rows still inside their expiration window.
// Market-aware rows are held to the aware cutoff, plain rows to the 24h one.
const freshPredicate = "(market_aware = ? AND cached_at >= ?) OR (market_aware = ? AND cached_at >= ?)"

type cacheGorm struct {
	db *gorm.DB
}

var _ usecase.CacheRepository = (*cacheGorm)(nil)

func NewCacheRepository(db *gorm.DB) *cacheGorm {
	return &cacheGorm{db: db}
}

type EntryModel struct {
	ID       uint   `gorm:"primaryKey"`
	Endpoint string `gorm:"size:64;not null;uniqueIndex:cache_ep_sym,priority:1"`
	Symbol   string `gorm:"size:32;not null;uniqueIndex:cache_ep_sym,priority:2"`

	Payload     []byte    `gorm:"not null"`
	CachedAt    time.Time `gorm:"not null;index"`
	MarketAware bool      `gorm:"not null;default:false"`
}

func (EntryModel) TableName() string {
	return "api_cache"
}

func toModel(e *entity.Entry) EntryModel {
	return EntryModel{
		Endpoint:    e.Endpoint,
		Symbol:      e.Symbol,
		Payload:     e.Payload,
		CachedAt:    e.CachedAt,
		MarketAware: e.MarketAware,
	}
}

func toEntity(m EntryModel) *entity.Entry {
	return &entity.Entry{
		Endpoint:    m.Endpoint,
		Symbol:      m.Symbol,
		Payload:     m.Payload,
		CachedAt:    m.CachedAt,
		MarketAware: m.MarketAware,
	}
}

func (r *cacheGorm) Find(ctx context.Context, endpoint, symbol string) (*entity.Entry, error) {
	var m EntryModel
	err := r.db.WithContext(ctx).
		Where("endpoint = ? AND symbol = ?", endpoint, symbol).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrEntryNotFound
		}
		return nil, err
	}
	return toEntity(m), nil
}

func (r *cacheGorm) Upsert(ctx context.Context, e *entity.Entry) error {
	m := toModel(e)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "cached_at", "market_aware"}),
	}).Create(&m).Error
}

func (r *cacheGorm) Delete(ctx context.Context, endpoint, symbol string) error {
	return r.db.WithContext(ctx).
		Where("endpoint = ? AND symbol = ?", endpoint, symbol).
		Delete(&EntryModel{}).Error
}

func (r *cacheGorm) DeleteMatching(ctx context.Context, endpoint, symbol string) (int64, error) {
	q := r.db.WithContext(ctx)
	if endpoint != "" {
		q = q.Where("endpoint = ?", endpoint)
	}
	if symbol != "" {
		q = q.Where("symbol = ?", symbol)
	}
	if endpoint == "" && symbol == "" {
		// gorm refuses an unfiltered DELETE unless explicitly allowed.
		q = q.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	res := q.Delete(&EntryModel{})
	return res.RowsAffected, res.Error
}

func (r *cacheGorm) DeleteStale(ctx context.Context, awareCutoff, plainCutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(market_aware = ? AND cached_at < ?) OR cached_at < ?", true, awareCutoff, plainCutoff).
		Delete(&EntryModel{})
	return res.RowsAffected, res.Error
}

func (r *cacheGorm) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&EntryModel{}).Count(&n).Error
	return n, err
}

func (r *cacheGorm) CountFresh(ctx context.Context, awareCutoff, plainCutoff time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&EntryModel{}).
		Where(freshPredicate, true, awareCutoff, false, plainCutoff).
		Count(&n).Error
	return n, err
}

func (r *cacheGorm) FreshByEndpoint(ctx context.Context, awareCutoff, plainCutoff time.Time) ([]entity.EndpointCount, error) {
	var rows []entity.EndpointCount
	err := r.db.WithContext(ctx).Model(&EntryModel{}).
		Select("endpoint, COUNT(*) AS count").
		Where(freshPredicate, true, awareCutoff, false, plainCutoff).
		Group("endpoint").
		Order("count DESC, endpoint ASC").
		Scan(&rows).Error
	return rows, err
}
