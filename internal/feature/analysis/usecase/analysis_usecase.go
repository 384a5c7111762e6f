// Package usecase はAIによる銘柄解説生成のビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"stockflow_backend/internal/feature/analysis/domain/entity"
	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	sentity "stockflow_backend/internal/feature/strategy/domain/entity"
	strategyusecase "stockflow_backend/internal/feature/strategy/usecase"
)

const (
	// MaxSymbolLength は銘柄コードの最大文字数です。
	MaxSymbolLength = 12
	// TechnicalPromptTemplate はテクニカル解説生成のプロンプトテンプレートです。
	TechnicalPromptTemplate = "You are an equity technical analyst. Write a concise technical commentary (3-5 sentences) on %s using the daily snapshot below. Cover trend, momentum and notable levels. Do not give financial advice.\n\n%s"
	// RecommendationPromptTemplate は売買スタンス解説生成のプロンプトテンプレートです。
	RecommendationPromptTemplate = "You are an equity analyst. In at most 4 sentences, explain whether a buy, hold or sell stance fits %s given the rule-based strategy summary below. Do not give financial advice.\n\n%s"

	historyDays            = 90
	technicalEndpoint      = "ai-technical-analysis"
	recommendationEndpoint = "ai-recommendation"
)

// validSymbol は銘柄コードに許可される文字パターンです（英大文字・数字・ドット・ハイフン）。
// プロンプトへ埋め込むため、パスパラメータ経由の任意文字列をここで遮断します。
var validSymbol = regexp.MustCompile(`^[A-Z0-9.\-]+$`)

// TextGenerator はプロンプトからテキストを生成するポートです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TextGenerator interface {
	// GenerateText はプロンプトから生成済みテキストを返します。
	GenerateText(ctx context.Context, prompt string) (string, error)
	// Model は使用中のモデル名を返します。
	Model() string
}

// PriceHistorySource は日足系列の取得ポートです。
type PriceHistorySource interface {
	DailyBars(ctx context.Context, symbol string, days int) ([]qentity.Bar, error)
}

// StrategySource は売買戦略の取得ポートです。
type StrategySource interface {
	GetStrategy(ctx context.Context, symbol string) (*sentity.Strategy, error)
}

// ResponseCache は生成済み解説の読み書きに使うキャッシュポートです。
type ResponseCache interface {
	Get(ctx context.Context, endpoint, symbol string) (json.RawMessage, bool)
	Set(ctx context.Context, endpoint, symbol string, payload any, marketAware bool) error
}

// analysisUsecase はLLM・市場データ・キャッシュを束ねるユースケースです。
type analysisUsecase struct {
	generator  TextGenerator
	bars       PriceHistorySource
	strategies StrategySource
	cache      ResponseCache
}

// NewAnalysisUsecase は指定された依存でanalysisUsecaseの新しいインスタンスを生成します。
func NewAnalysisUsecase(generator TextGenerator, bars PriceHistorySource, strategies StrategySource, cache ResponseCache) *analysisUsecase {
	return &analysisUsecase{generator: generator, bars: bars, strategies: strategies, cache: cache}
}

// Model は解説生成に使われるモデル名を返します。
func (u *analysisUsecase) Model() string {
	return u.generator.Model()
}

// TechnicalCommentary は銘柄のテクニカル解説を返します。キャッシュにあれば
// それを使い、なければ日足系列と指標からプロンプトを組み立てて生成し、
// 結果をキャッシュします。
func (u *analysisUsecase) TechnicalCommentary(ctx context.Context, symbol string) (*entity.Commentary, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if c := u.cached(ctx, technicalEndpoint, symbol); c != nil {
		return c, nil
	}

	bars, err := u.bars.DailyBars(ctx, symbol, historyDays)
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	ind := strategyusecase.ComputeIndicators(bars)
	prompt := fmt.Sprintf(TechnicalPromptTemplate, symbol, renderSnapshot(bars, ind))

	return u.generate(ctx, technicalEndpoint, symbol, entity.KindTechnical, prompt)
}

// Recommendation は銘柄の売買スタンス解説を返します。戦略の計算結果を
// プロンプトに要約して渡します。
func (u *analysisUsecase) Recommendation(ctx context.Context, symbol string) (*entity.Commentary, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if c := u.cached(ctx, recommendationEndpoint, symbol); c != nil {
		return c, nil
	}

	st, err := u.strategies.GetStrategy(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("strategy for %s: %w", symbol, err)
	}
	if st.Error != "" {
		return nil, fmt.Errorf("strategy for %s is unavailable: %s", symbol, st.Error)
	}

	prompt := fmt.Sprintf(RecommendationPromptTemplate, symbol, renderStrategy(st))

	return u.generate(ctx, recommendationEndpoint, symbol, entity.KindRecommendation, prompt)
}

// generate はLLM呼び出しと結果のキャッシュ書き込みを行います。
func (u *analysisUsecase) generate(ctx context.Context, endpoint, symbol, kind, prompt string) (*entity.Commentary, error) {
	text, err := u.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("text generation failed for %q: %w", symbol, err)
	}

	c := &entity.Commentary{
		Symbol:      symbol,
		Kind:        kind,
		Text:        text,
		Model:       u.generator.Model(),
		GeneratedAt: time.Now().UTC(),
	}
	if err := u.cache.Set(ctx, endpoint, symbol, c, true); err != nil {
		slog.Warn("commentary cache write failed", "endpoint", endpoint, "symbol", symbol, "error", err)
	}
	return c, nil
}

// cached はキャッシュ済み解説を返します。未登録または復号不能ならnilです。
func (u *analysisUsecase) cached(ctx context.Context, endpoint, symbol string) *entity.Commentary {
	raw, ok := u.cache.Get(ctx, endpoint, symbol)
	if !ok {
		return nil
	}
	var c entity.Commentary
	if err := json.Unmarshal(raw, &c); err != nil {
		slog.Warn("discarding undecodable cached commentary", "endpoint", endpoint, "symbol", symbol)
		return nil
	}
	c.FromCache = true
	return &c
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("%w: symbol is required", ErrInvalidSymbol)
	}
	if utf8.RuneCountInString(symbol) > MaxSymbolLength {
		return "", fmt.Errorf("%w: exceeds maximum length of %d characters", ErrInvalidSymbol, MaxSymbolLength)
	}
	if !validSymbol.MatchString(symbol) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return symbol, nil
}
