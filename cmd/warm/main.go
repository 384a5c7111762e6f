package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"stockflow_backend/internal/app/di"
	cacheadapters "stockflow_backend/internal/feature/apicache/adapters"
	cacheusecase "stockflow_backend/internal/feature/apicache/usecase"
	quoteusecase "stockflow_backend/internal/feature/quotes/usecase"
	strategyusecase "stockflow_backend/internal/feature/strategy/usecase"
	symbollistadapters "stockflow_backend/internal/feature/symbollist/adapters"
	infradb "stockflow_backend/internal/platform/db"
	"stockflow_backend/internal/platform/markethours"
	"stockflow_backend/internal/platform/metrics"
	"stockflow_backend/internal/shared/ratelimiter"
)

func main() {
	// .envを読み込む（コンテナでは環境変数を直接渡すため任意）
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	db, err := infradb.Open()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// バッチではメトリクスを公開しないためローカルレジストリを使う
	m := metrics.New(prometheus.NewRegistry())

	cacheUC := cacheusecase.NewCacheUsecase(cacheadapters.NewCacheRepository(db), markethours.NewCalendar(), m)
	quoteUC := quoteusecase.NewQuoteUsecase(di.NewQuoteProvider(), cacheUC, m)
	strategyUC := strategyusecase.NewStrategyUsecase(quoteUC, quoteUC, cacheUC)

	rl := ratelimiter.NewRateLimiter(8, time.Minute) // 1分に8回まで
	wu := cacheusecase.NewWarmUsecase(quoteUC, quoteUC, strategyUC, cacheUC, rl)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	symbolRepo := symbollistadapters.NewSymbolRepository(db)
	symbols, err := symbolRepo.ListActiveCodes(ctx)
	if err != nil {
		slog.Error("failed to load symbols", "error", err)
		os.Exit(1)
	}

	if err := wu.WarmAll(ctx, symbols); err != nil {
		slog.Error("cache warm failed", "error", err)
		os.Exit(1)
	}
	slog.Info("warm ok")
}
