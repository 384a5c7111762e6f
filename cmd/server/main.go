package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	redisv9 "github.com/redis/go-redis/v9"

	"stockflow_backend/internal/app/di"
	"stockflow_backend/internal/app/router"
	analysishandler "stockflow_backend/internal/feature/analysis/transport/handler"
	analysisusecase "stockflow_backend/internal/feature/analysis/usecase"
	cacheadapters "stockflow_backend/internal/feature/apicache/adapters"
	cachehandler "stockflow_backend/internal/feature/apicache/transport/handler"
	cacheusecase "stockflow_backend/internal/feature/apicache/usecase"
	authadapters "stockflow_backend/internal/feature/auth/adapters"
	authhandler "stockflow_backend/internal/feature/auth/transport/handler"
	authusecase "stockflow_backend/internal/feature/auth/usecase"
	quotehandler "stockflow_backend/internal/feature/quotes/transport/handler"
	quoteusecase "stockflow_backend/internal/feature/quotes/usecase"
	strategyhandler "stockflow_backend/internal/feature/strategy/transport/handler"
	strategyusecase "stockflow_backend/internal/feature/strategy/usecase"
	symbollistadapters "stockflow_backend/internal/feature/symbollist/adapters"
	symbollisthandler "stockflow_backend/internal/feature/symbollist/transport/handler"
	symbollistusecase "stockflow_backend/internal/feature/symbollist/usecase"
	infradb "stockflow_backend/internal/platform/db"
	jwtmw "stockflow_backend/internal/platform/jwt"
	"stockflow_backend/internal/platform/markethours"
	"stockflow_backend/internal/platform/metrics"
	infraredis "stockflow_backend/internal/platform/redis"
)

func main() {
	// .envを読み込む（コンテナでは環境変数を直接渡すため任意）
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	// db
	db, err := infradb.Open()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		slog.Warn("Redis unavailable, sessions fall back to the database")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	// Repository
	cacheRepo := cacheadapters.NewCacheRepository(db)
	userRepo := authadapters.NewUserGorm(db)
	sessionRepo := di.NewSessionRepository(rdb, db)
	symbolRepo := symbollistadapters.NewSymbolRepository(db)

	// Usecase
	cacheUC := cacheusecase.NewCacheUsecase(cacheRepo, markethours.NewCalendar(), m)
	quoteUC := quoteusecase.NewQuoteUsecase(di.NewQuoteProvider(), cacheUC, m)
	strategyUC := strategyusecase.NewStrategyUsecase(quoteUC, quoteUC, cacheUC)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, jwtmw.NewGenerator(os.Getenv("JWT_SECRET"), time.Hour))
	symbolUC := symbollistusecase.NewSymbolUsecase(symbolRepo)

	// Gemini未設定でも他のエンドポイントは動かす
	analysisH := analysishandler.NewAnalysisHandler(nil)
	if gen, err := di.NewTextGenerator(context.Background(), rdb, m); err != nil {
		slog.Warn("Gemini unavailable, AI analysis endpoints disabled", "error", err)
	} else {
		analysisUC := analysisusecase.NewAnalysisUsecase(gen, quoteUC, strategyUC, cacheUC)
		analysisH = analysishandler.NewAnalysisHandler(analysisUC)
	}

	// ルータ生成
	r := router.New(router.Handlers{
		Auth:     authhandler.NewAuthHandler(authUC),
		Quotes:   quotehandler.NewQuoteHandler(quoteUC),
		Strategy: strategyhandler.NewStrategyHandler(strategyUC),
		Analysis: analysisH,
		Cache:    cachehandler.NewCacheHandler(cacheUC),
		Symbols:  symbollisthandler.NewSymbolHandler(symbolUC),
	})

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	// PORT環境変数があればそれを使用（なければ :8080）
	if err := r.Run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
