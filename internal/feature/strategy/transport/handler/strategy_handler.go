// Package handler はstrategyフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"stockflow_backend/internal/api"
	"stockflow_backend/internal/feature/strategy/domain/entity"

	"github.com/gin-gonic/gin"
)

// StrategyUsecase は売買戦略導出のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type StrategyUsecase interface {
	GetStrategy(ctx context.Context, symbol string) (*entity.Strategy, error)
}

// StrategyHandler は売買戦略のHTTPリクエストを処理します。
type StrategyHandler struct {
	uc StrategyUsecase
}

// NewStrategyHandler は指定されたusecaseでStrategyHandlerの新しいインスタンスを生成します。
func NewStrategyHandler(uc StrategyUsecase) *StrategyHandler {
	return &StrategyHandler{uc: uc}
}

// GetStrategyHandler は銘柄コードを受け取り、売買戦略をJSONで返します。
// データ不足や上流障害はWAIT戦略として200で返ります。
//
// エンドポイント例:
// GET /v1/strategy/:symbol
func (h *StrategyHandler) GetStrategyHandler(c *gin.Context) {
	symbol := c.Param("symbol")

	st, err := h.uc.GetStrategy(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	// Strategyエンティティ自体が公開スキーマなのでそのまま返します。
	c.JSON(http.StatusOK, st)
}
