package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"stockflow_backend/internal/feature/quotes/domain/entity"
	"stockflow_backend/internal/feature/quotes/usecase"
	"stockflow_backend/internal/platform/externalapi/twelvedata/dto"
)

// TwelveDataQuotes はTwelve Data外部APIから株価データを取得するQuoteProvider実装です。
type TwelveDataQuotes struct {
	cfg    Config
	client *http.Client
}

// TwelveDataQuotesがQuoteProviderを実装していることをコンパイル時に検証します。
var _ usecase.QuoteProvider = (*TwelveDataQuotes)(nil)

// NewTwelveDataQuotes は指定された設定とHTTPクライアントでTwelveDataQuotesの新しいインスタンスを生成します。
func NewTwelveDataQuotes(cfg Config, client *http.Client) *TwelveDataQuotes {
	return &TwelveDataQuotes{cfg: cfg, client: client}
}

// GetTimeSeries はTwelve Data APIから時系列株価データを取得し、
// 古い順に整列したentity.Barのスライスとして返します。
func (t *TwelveDataQuotes) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	var body dto.TimeSeriesResponse
	if err := t.getJSON(ctx, "time_series", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	bars := make([]entity.Bar, 0, len(body.Values))
	for _, v := range body.Values {

		// タイムスタンプをパース
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse("2006-01-02", v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		// 始値をパース
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		// 高値をパース
		h, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		// 安値をパース
		l, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		// 終値をパース
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		// 出来高をパース
		vol64, err := strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}

		// ドメインエンティティに変換
		bars = append(bars, entity.Bar{
			Time:   tm,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol64,
		})
	}

	// Twelve Dataは新しい順で返すため、指標計算が前提とする古い順に整列します。
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// GetPriceTarget はTwelve Data APIからアナリストの目標株価コンセンサスを取得します。
// レスポンスで0のフィールドは未提供とみなしnilのままにします。
func (t *TwelveDataQuotes) GetPriceTarget(ctx context.Context, symbol string) (*entity.AnalystTargets, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	var body dto.PriceTargetResponse
	if err := t.getJSON(ctx, "price_target", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	return &entity.AnalystTargets{
		Mean:    nonZero(body.Average),
		High:    nonZero(body.High),
		Low:     nonZero(body.Low),
		Current: nonZero(body.CurrentPrice),
	}, nil
}

// getJSON は指定エンドポイントへGETリクエストを送り、レスポンスJSONをoutへデコードします。
func (t *TwelveDataQuotes) getJSON(ctx context.Context, endpoint string, q url.Values, out any) error {
	// URLを生成
	u := fmt.Sprintf("%s/%s?%s", t.cfg.BaseURL, endpoint, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	return json.NewDecoder(res.Body).Decode(out)
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
