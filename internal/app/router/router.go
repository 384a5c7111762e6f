package router

import (
	analysishandler "stockflow_backend/internal/feature/analysis/transport/handler"
	cachehandler "stockflow_backend/internal/feature/apicache/transport/handler"
	authhandler "stockflow_backend/internal/feature/auth/transport/handler"
	quotehandler "stockflow_backend/internal/feature/quotes/transport/handler"
	strategyhandler "stockflow_backend/internal/feature/strategy/transport/handler"
	symbollisthandler "stockflow_backend/internal/feature/symbollist/transport/handler"
	"stockflow_backend/internal/platform/http/handler"
	jwtmw "stockflow_backend/internal/platform/jwt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles the feature handlers the router mounts.
type Handlers struct {
	Auth     *authhandler.AuthHandler
	Quotes   *quotehandler.QuoteHandler
	Strategy *strategyhandler.StrategyHandler
	Analysis *analysishandler.AnalysisHandler
	Cache    *cachehandler.CacheHandler
	Symbols  *symbollisthandler.SymbolHandler
}

func New(h Handlers) *gin.Engine {
	r := gin.Default()
	// CORS のデフォルト設定を有効
	r.Use(cors.Default())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	// Prometheusメトリクス
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// 新規ユーザー登録
	r.POST("/signup", h.Auth.Signup)
	// ログイン（トークンペア発行）
	r.POST("/login", h.Auth.Login)
	// リフレッシュトークンでのローテーション（トークン自体で認証）
	r.POST("/refresh", h.Auth.Refresh)
	// ログアウト（リフレッシュトークンの失効）
	r.POST("/logout", h.Auth.Logout)

	// 認証必須のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	v1 := r.Group("/v1")
	v1.Use(jwtmw.AuthRequired())
	{
		v1.GET("/quotes/:symbol/history", h.Quotes.GetHistoryHandler)
		v1.GET("/quotes/:symbol/targets", h.Quotes.GetTargetsHandler)
		v1.GET("/strategy/:symbol", h.Strategy.GetStrategyHandler)
		v1.GET("/analysis/:symbol/technical", h.Analysis.GetTechnicalHandler)
		v1.GET("/analysis/:symbol/recommendation", h.Analysis.GetRecommendationHandler)
		v1.GET("/health/llm", h.Analysis.GetHealthHandler)
		v1.GET("/cache/stats", h.Cache.GetStatsHandler)
		v1.DELETE("/cache", h.Cache.ClearHandler)
		v1.DELETE("/cache/symbols/:symbol", h.Cache.ClearSymbolHandler)
		v1.POST("/cache/sweep", h.Cache.SweepHandler)
		v1.GET("/symbols", h.Symbols.List)
	}

	return r
}
