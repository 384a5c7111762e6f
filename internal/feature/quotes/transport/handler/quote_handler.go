// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"stockflow_backend/internal/api"
	"stockflow_backend/internal/feature/quotes/domain/entity"

	"github.com/gin-gonic/gin"
)

// QuoteUsecase は株価データ取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuoteUsecase interface {
	DailyBars(ctx context.Context, symbol string, days int) ([]entity.Bar, error)
	PriceTargets(ctx context.Context, symbol string) (*entity.AnalystTargets, error)
}

// QuoteHandler は株価データのHTTPリクエストを処理します。
type QuoteHandler struct {
	uc QuoteUsecase
}

// NewQuoteHandler は指定されたusecaseでQuoteHandlerの新しいインスタンスを生成します。
func NewQuoteHandler(uc QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// GetHistoryHandler は銘柄コードを受け取り、日足系列を古い順のJSONで返します。
//
// エンドポイント例:
// GET /v1/quotes/:symbol/history?days=90
func (h *QuoteHandler) GetHistoryHandler(c *gin.Context) {
	symbol := c.Param("symbol")
	// 未指定の場合はデフォルト値を使用
	daysStr := c.DefaultQuery("days", "90")
	// 文字列を整数に変換
	days, _ := strconv.Atoi(daysStr)

	bars, err := h.uc.DailyBars(c.Request.Context(), symbol, days)

	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	// データをフォーマット
	out := make([]api.BarResponse, 0, len(bars))
	for _, x := range bars {
		out = append(out, api.BarResponse{
			Time:   x.Time.UTC().Format("2006-01-02"),
			Open:   x.Open,
			High:   x.High,
			Low:    x.Low,
			Close:  x.Close,
			Volume: x.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}

// GetTargetsHandler は銘柄コードを受け取り、アナリスト目標株価をJSONで返します。
//
// エンドポイント例:
// GET /v1/quotes/:symbol/targets
func (h *QuoteHandler) GetTargetsHandler(c *gin.Context) {
	symbol := c.Param("symbol")

	targets, err := h.uc.PriceTargets(c.Request.Context(), symbol)

	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.AnalystTargetsResponse{
		Mean:    targets.Mean,
		High:    targets.High,
		Low:     targets.Low,
		Current: targets.Current,
	})
}
