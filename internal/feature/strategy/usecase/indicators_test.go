package usecase_test

import (
	"testing"
	"time"

	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	"stockflow_backend/internal/feature/strategy/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearBars は終値がstartからstepずつ変化する日足系列を生成します。
func linearBars(n int, start, step float64, volume int64) []qentity.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]qentity.Bar, 0, n)
	for i := 0; i < n; i++ {
		close := start + step*float64(i)
		bars = append(bars, qentity.Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   close - 0.5,
			High:   close + 1.5,
			Low:    close - 1.5,
			Close:  close,
			Volume: volume,
		})
	}
	return bars
}

// TestComputeIndicators_TooFewBars は30本未満の系列で空の結果になることを検証します。
func TestComputeIndicators_TooFewBars(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 29} {
		set := usecase.ComputeIndicators(linearBars(n, 100, 0.5, 1_000_000))
		assert.True(t, set.Empty(), "expected empty set for %d bars", n)
	}
}

// TestComputeIndicators_UptrendValues は単調な上昇系列での各指標値を検証します。
func TestComputeIndicators_UptrendValues(t *testing.T) {
	t.Parallel()

	// 終値は100.0から0.5刻みで129.5まで
	set := usecase.ComputeIndicators(linearBars(60, 100, 0.5, 1_000_000))
	require.False(t, set.Empty())

	require.NotNil(t, set.SMA20)
	assert.InDelta(t, 124.75, *set.SMA20, 1e-6)

	require.NotNil(t, set.SMA50)
	assert.InDelta(t, 117.25, *set.SMA50, 1e-6)

	// 下落が一度もないのでRSIは最大値
	require.NotNil(t, set.RSI14)
	assert.Equal(t, 100.0, *set.RSI14)

	require.NotNil(t, set.MACD)
	require.NotNil(t, set.MACDSignal)
	assert.Positive(t, *set.MACD, "MACD should be positive in an uptrend")
	assert.Greater(t, *set.MACD, *set.MACDSignal, "MACD should lead its signal line upward")

	require.NotNil(t, set.BBUpper)
	require.NotNil(t, set.BBLower)
	assert.InDelta(t, 130.666, *set.BBUpper, 0.01)
	assert.InDelta(t, 118.834, *set.BBLower, 0.01)
	assert.Greater(t, *set.BBUpper, *set.BBLower)

	require.NotNil(t, set.AvgVolume20)
	assert.InDelta(t, 1_000_000, *set.AvgVolume20, 1e-6)
	require.NotNil(t, set.VolumeRatio)
	assert.InDelta(t, 1.0, *set.VolumeRatio, 1e-9)

	require.NotNil(t, set.High5d)
	require.NotNil(t, set.Low5d)
	assert.Equal(t, 129.5, *set.High5d)
	assert.Equal(t, 127.5, *set.Low5d)
}

// TestComputeIndicators_DowntrendRSIFloor は下落のみの系列でRSIが0になることを検証します。
func TestComputeIndicators_DowntrendRSIFloor(t *testing.T) {
	t.Parallel()

	set := usecase.ComputeIndicators(linearBars(60, 200, -0.5, 1_000_000))

	require.NotNil(t, set.RSI14)
	assert.Equal(t, 0.0, *set.RSI14)

	require.NotNil(t, set.MACD)
	require.NotNil(t, set.MACDSignal)
	assert.Negative(t, *set.MACD)
	assert.Less(t, *set.MACD, *set.MACDSignal)
}

// TestComputeIndicators_WindowGates は系列長に応じて長期指標が省略されることを検証します。
func TestComputeIndicators_WindowGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bars      int
		wantSMA50 bool
		wantMACD  bool
	}{
		{"34 bars: no SMA50, no MACD", 34, false, false},
		{"40 bars: MACD only", 40, false, true},
		{"50 bars: everything", 50, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set := usecase.ComputeIndicators(linearBars(tt.bars, 100, 0.5, 1_000_000))

			assert.NotNil(t, set.SMA20, "SMA20 is always present above the floor")
			assert.NotNil(t, set.RSI14)
			assert.NotNil(t, set.BBUpper)
			assert.Equal(t, tt.wantSMA50, set.SMA50 != nil, "SMA50 presence")
			assert.Equal(t, tt.wantMACD, set.MACD != nil, "MACD presence")
			assert.Equal(t, tt.wantMACD, set.MACDSignal != nil, "MACD signal presence")
		})
	}
}

// TestComputeIndicators_VolumeSpike は出来高急増時の比率を検証します。
func TestComputeIndicators_VolumeSpike(t *testing.T) {
	t.Parallel()

	bars := linearBars(60, 100, 0.5, 1_000_000)
	bars[len(bars)-1].Volume = 2_000_000

	set := usecase.ComputeIndicators(bars)

	require.NotNil(t, set.AvgVolume20)
	require.NotNil(t, set.VolumeRatio)
	// 平均は(19*1M + 2M)/20 = 1.05M、比率は2M/1.05M
	assert.InDelta(t, 1_050_000, *set.AvgVolume20, 1e-6)
	assert.InDelta(t, 1.9048, *set.VolumeRatio, 1e-3)
}
