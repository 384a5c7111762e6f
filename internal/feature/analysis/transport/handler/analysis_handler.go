// Package handler はanalysisフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"stockflow_backend/internal/api"
	"stockflow_backend/internal/feature/analysis/domain/entity"
	"stockflow_backend/internal/feature/analysis/usecase"

	"github.com/gin-gonic/gin"
)

// AnalysisUsecase はAI解説生成のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AnalysisUsecase interface {
	TechnicalCommentary(ctx context.Context, symbol string) (*entity.Commentary, error)
	Recommendation(ctx context.Context, symbol string) (*entity.Commentary, error)
	Model() string
}

// AnalysisHandler はAI解説のHTTPリクエストを処理します。
// ucがnilの場合、生成系エンドポイントは503を返します。
type AnalysisHandler struct {
	uc AnalysisUsecase
}

// NewAnalysisHandler はAnalysisHandlerの新しいインスタンスを生成します。
// Geminiが構成されていない環境ではucにnilを渡します。
func NewAnalysisHandler(uc AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

// GetTechnicalHandler は銘柄のテクニカル解説を生成して返します。
//
// エンドポイント例:
// GET /v1/analysis/:symbol/technical
func (h *AnalysisHandler) GetTechnicalHandler(c *gin.Context) {
	h.serve(c, func(ctx context.Context, symbol string) (*entity.Commentary, error) {
		return h.uc.TechnicalCommentary(ctx, symbol)
	})
}

// GetRecommendationHandler は銘柄の売買スタンス解説を生成して返します。
//
// エンドポイント例:
// GET /v1/analysis/:symbol/recommendation
func (h *AnalysisHandler) GetRecommendationHandler(c *gin.Context) {
	h.serve(c, func(ctx context.Context, symbol string) (*entity.Commentary, error) {
		return h.uc.Recommendation(ctx, symbol)
	})
}

// GetHealthHandler はLLM連携の状態を返します。
//
// エンドポイント例:
// GET /v1/health/llm
func (h *AnalysisHandler) GetHealthHandler(c *gin.Context) {
	if h.uc == nil {
		c.JSON(http.StatusServiceUnavailable, api.HealthLLMResponse{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, api.HealthLLMResponse{Status: "ok", Model: h.uc.Model()})
}

func (h *AnalysisHandler) serve(c *gin.Context, gen func(ctx context.Context, symbol string) (*entity.Commentary, error)) {
	if h.uc == nil {
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "AI analysis is not configured"})
		return
	}

	commentary, err := gen(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidSymbol) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.CommentaryResponse{
		Symbol:    commentary.Symbol,
		Kind:      commentary.Kind,
		Text:      commentary.Text,
		Model:     commentary.Model,
		CachedAt:  commentary.GeneratedAt.UTC().Format(time.RFC3339),
		FromCache: commentary.FromCache,
	})
}
