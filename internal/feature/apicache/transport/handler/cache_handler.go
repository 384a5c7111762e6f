// Package handler はapicacheフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"stockflow_backend/internal/api"
	"stockflow_backend/internal/feature/apicache/domain/entity"

	"github.com/gin-gonic/gin"
)

// CacheUsecase はキャッシュ管理操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CacheUsecase interface {
	Stats(ctx context.Context) (*entity.Stats, error)
	Clear(ctx context.Context, endpoint, symbol string) (int64, error)
	ClearSymbol(ctx context.Context, symbol string) (int64, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// CacheHandler はキャッシュ管理のHTTPリクエストを処理します。
type CacheHandler struct {
	uc CacheUsecase
}

// NewCacheHandler は指定されたusecaseでCacheHandlerの新しいインスタンスを生成します。
func NewCacheHandler(uc CacheUsecase) *CacheHandler {
	return &CacheHandler{uc: uc}
}

// GetStatsHandler はキャッシュの件数サマリーをJSONで返します。
//
// エンドポイント例:
// GET /v1/cache/stats
func (h *CacheHandler) GetStatsHandler(c *gin.Context) {
	stats, err := h.uc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	out := api.CacheStatsResponse{
		Total:        stats.Total,
		Valid:        stats.Valid,
		Expired:      stats.Expired,
		ByEndpoint:   make([]api.EndpointCountResponse, 0, len(stats.ByEndpoint)),
		MarketStatus: stats.MarketStatus,
	}
	for _, x := range stats.ByEndpoint {
		out.ByEndpoint = append(out.ByEndpoint, api.EndpointCountResponse{
			Endpoint: x.Endpoint,
			Count:    x.Count,
		})
	}

	c.JSON(http.StatusOK, out)
}

// ClearHandler はクエリパラメータで絞り込んだキャッシュ行を削除します。
// endpointとsymbolはどちらも省略可能で、両方省略すると全件削除になります。
//
// エンドポイント例:
// DELETE /v1/cache?endpoint=price-history&symbol=AAPL
func (h *CacheHandler) ClearHandler(c *gin.Context) {
	endpoint := c.Query("endpoint")
	symbol := c.Query("symbol")

	removed, err := h.uc.Clear(c.Request.Context(), endpoint, symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.RemovedResponse{Removed: removed})
}

// ClearSymbolHandler は指定銘柄のキャッシュ行を全エンドポイント横断で削除します。
//
// エンドポイント例:
// DELETE /v1/cache/symbols/AAPL
func (h *CacheHandler) ClearSymbolHandler(c *gin.Context) {
	removed, err := h.uc.ClearSymbol(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.RemovedResponse{Removed: removed})
}

// SweepHandler は期限切れのキャッシュ行を一括削除します。
//
// エンドポイント例:
// POST /v1/cache/sweep
func (h *CacheHandler) SweepHandler(c *gin.Context) {
	removed, err := h.uc.SweepExpired(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.RemovedResponse{Removed: removed})
}
