package usecase_test

import (
	"encoding/json"
	"strings"
	"testing"

	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	"stockflow_backend/internal/feature/strategy/domain/entity"
	"stockflow_backend/internal/feature/strategy/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

// sawtoothBars は100〜145を往復するレンジ相場の系列を生成します。
func sawtoothBars(n int) []qentity.Bar {
	bars := linearBars(n, 100, 0, 1_000_000)
	for i := range bars {
		bars[i].Close = 100 + 5*float64(i%10)
	}
	return bars
}

// TestClassify_Uptrend_Long は単調上昇の系列でLONG戦略になることを検証します。
func TestClassify_Uptrend_Long(t *testing.T) {
	t.Parallel()

	bars := linearBars(60, 100, 0.5, 1_000_000)
	targets := &qentity.AnalystTargets{Mean: fptr(150.0), High: fptr(160.0), Low: fptr(110.0)}

	st := usecase.Classify("AAPL", bars, targets)
	require.NotNil(t, st)

	assert.Equal(t, "AAPL", st.Ticker)
	assert.Equal(t, entity.StrategyLong, st.StrategyType)
	assert.Contains(t, []entity.Confidence{entity.ConfidenceHigh, entity.ConfidenceMedium}, st.Confidence)
	assert.Empty(t, st.Error)

	require.NotNil(t, st.CurrentPrice)
	assert.InDelta(t, 129.5, *st.CurrentPrice, 1e-9)

	// エントリーは現在値以下（押し目のSMA20）
	require.NotNil(t, st.EntryTarget)
	assert.InDelta(t, 124.75, *st.EntryTarget, 1e-6)
	assert.LessOrEqual(t, *st.EntryTarget, *st.CurrentPrice)

	// 利確目標は現在値より上で単調増加
	require.Len(t, st.ExitTargets, 3)
	assert.Greater(t, st.ExitTargets[0].Price, *st.CurrentPrice)
	assert.Greater(t, st.ExitTargets[1].Price, st.ExitTargets[0].Price)
	assert.Greater(t, st.ExitTargets[2].Price, st.ExitTargets[1].Price)
	for _, x := range st.ExitTargets {
		assert.NotEmpty(t, x.Level)
		assert.Positive(t, x.GainPct)
	}

	// 損切り < エントリー < 最初の利確目標
	require.NotNil(t, st.StopLoss)
	assert.Less(t, *st.StopLoss, *st.EntryTarget)
	assert.Less(t, *st.EntryTarget, st.ExitTargets[0].Price)

	require.NotNil(t, st.RiskRewardRatio)
	assert.Positive(t, *st.RiskRewardRatio)

	joined := strings.ToLower(strings.Join(st.Signals, " "))
	assert.Contains(t, joined, "bullish")

	// アナリスト目標はそのまま埋め込まれる
	assert.Equal(t, targets, st.AnalystTargets)

	require.NotNil(t, st.TechnicalLevels.SMA20)
	require.NotNil(t, st.TechnicalLevels.RSI)
	assert.GreaterOrEqual(t, *st.TechnicalLevels.RSI, 0.0)
	assert.LessOrEqual(t, *st.TechnicalLevels.RSI, 100.0)
	require.NotNil(t, st.TechnicalLevels.BBUpper)
	require.NotNil(t, st.TechnicalLevels.BBLower)
	assert.Greater(t, *st.TechnicalLevels.BBUpper, *st.TechnicalLevels.BBLower)
}

// TestClassify_Downtrend_Short は単調下落の系列でSHORT戦略になることを検証します。
func TestClassify_Downtrend_Short(t *testing.T) {
	t.Parallel()

	bars := linearBars(60, 200, -0.5, 1_000_000)
	targets := &qentity.AnalystTargets{Mean: fptr(150.0), Low: fptr(140.0)}

	st := usecase.Classify("TSLA", bars, targets)
	require.NotNil(t, st)

	assert.Equal(t, entity.StrategyShort, st.StrategyType)
	assert.Contains(t, []entity.Confidence{entity.ConfidenceHigh, entity.ConfidenceMedium}, st.Confidence)

	require.NotNil(t, st.CurrentPrice)
	assert.InDelta(t, 170.5, *st.CurrentPrice, 1e-9)

	// エントリーは現在値以上（戻りのSMA20）
	require.NotNil(t, st.EntryTarget)
	assert.GreaterOrEqual(t, *st.EntryTarget, *st.CurrentPrice)

	// 利確目標は現在値より下で単調減少
	require.Len(t, st.ExitTargets, 3)
	assert.Less(t, st.ExitTargets[0].Price, *st.CurrentPrice)
	assert.Less(t, st.ExitTargets[1].Price, st.ExitTargets[0].Price)
	assert.Less(t, st.ExitTargets[2].Price, st.ExitTargets[1].Price)
	for _, x := range st.ExitTargets {
		assert.Positive(t, x.GainPct)
	}

	// 損切りはエントリーより上
	require.NotNil(t, st.StopLoss)
	assert.Greater(t, *st.StopLoss, *st.EntryTarget)

	require.NotNil(t, st.RiskRewardRatio)
	assert.Positive(t, *st.RiskRewardRatio)

	joined := strings.ToLower(strings.Join(st.Signals, " "))
	assert.Contains(t, joined, "bearish")
}

// TestClassify_Sideways_Wait はレンジ相場でWAITになることを検証します。
func TestClassify_Sideways_Wait(t *testing.T) {
	t.Parallel()

	st := usecase.Classify("GOOGL", sawtoothBars(60), nil)
	require.NotNil(t, st)

	assert.Equal(t, entity.StrategyWait, st.StrategyType)
	assert.Equal(t, entity.ConfidenceLow, st.Confidence)
	assert.Empty(t, st.ExitTargets)
	assert.Nil(t, st.EntryTarget)
	assert.Nil(t, st.StopLoss)
	assert.Nil(t, st.RiskRewardRatio)
	assert.Contains(t, strings.ToLower(st.Timeframe), "clearer signals")
	assert.Empty(t, st.Error)

	// 判定材料となった指標は添付される
	assert.NotNil(t, st.CurrentPrice)
	assert.NotNil(t, st.TechnicalLevels.SMA20)
}

// TestClassify_Fallbacks は欠損データでの安全なWAITフォールバックを検証します。
func TestClassify_Fallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bars      []qentity.Bar
		errSubstr string
	}{
		{"nil series", nil, "unable to fetch"},
		{"empty series", []qentity.Bar{}, "insufficient"},
		{"ten bars", linearBars(10, 100, 0.5, 1_000_000), "insufficient"},
		{"nineteen bars", linearBars(19, 100, 0.5, 1_000_000), "insufficient"},
		{"zero closes", linearBars(25, 0, 0, 1_000_000), "invalid latest close"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := usecase.Classify("BAD", tt.bars, nil)
			require.NotNil(t, st)

			assert.Equal(t, entity.StrategyWait, st.StrategyType)
			assert.Equal(t, entity.ConfidenceLow, st.Confidence)
			assert.NotEmpty(t, st.Error)
			assert.Contains(t, strings.ToLower(st.Error), tt.errSubstr)
			assert.Empty(t, st.ExitTargets)
			assert.Nil(t, st.CurrentPrice)
			assert.Contains(t, strings.ToLower(st.Timeframe), "clearer signals")
		})
	}
}

// TestClassify_BelowIndicatorWindow は20〜29本の系列がエラーなしのWAITになることを検証します。
func TestClassify_BelowIndicatorWindow(t *testing.T) {
	t.Parallel()

	st := usecase.Classify("NEWIPO", linearBars(25, 100, 0.5, 1_000_000), nil)
	require.NotNil(t, st)

	assert.Equal(t, entity.StrategyWait, st.StrategyType)
	assert.Equal(t, entity.ConfidenceLow, st.Confidence)
	assert.Empty(t, st.Error, "a short but fetchable series is not an error")
	assert.NotNil(t, st.CurrentPrice)
	assert.Nil(t, st.TechnicalLevels.SMA20, "indicators need 30 bars")
}

// TestClassify_VolumeConfirmation は高出来高がスコアを増幅することを検証します。
func TestClassify_VolumeConfirmation(t *testing.T) {
	t.Parallel()

	bars := linearBars(60, 100, 0.5, 1_000_000)
	bars[len(bars)-1].Volume = 2_000_000

	st := usecase.Classify("NVDA", bars, nil)
	require.NotNil(t, st)

	assert.Equal(t, entity.StrategyLong, st.StrategyType)
	joined := strings.ToLower(strings.Join(st.Signals, " "))
	assert.Contains(t, joined, "high volume")
}

// TestClassify_JSONRoundTrip は出力が劣化なくJSONを往復できることを検証します。
func TestClassify_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	cases := map[string]*entity.Strategy{
		"long": usecase.Classify("AAPL", linearBars(60, 100, 0.5, 1_000_000),
			&qentity.AnalystTargets{Mean: fptr(150.0)}),
		"wait fallback": usecase.Classify("BAD", nil, nil),
		"sideways":      usecase.Classify("GOOGL", sawtoothBars(60), nil),
	}

	for name, st := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := json.Marshal(st)
			require.NoError(t, err)

			var decoded entity.Strategy
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, st, &decoded)

			again, err := json.Marshal(&decoded)
			require.NoError(t, err)
			assert.JSONEq(t, string(raw), string(again))
		})
	}
}
