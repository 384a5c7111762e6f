package usecase

import (
	talib "github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	"stockflow_backend/internal/feature/strategy/domain/entity"
)

const (
	// minIndicatorBars を下回る系列では指標を一切計算しません。
	minIndicatorBars = 30
	// macdBars はEMA(26)のウォームアップとシグナル線EMA(9)をカバーします。
	macdBars = 35
)

// ComputeIndicators は日足系列（古い順）からテクニカル指標のスナップショットを導出します。
// 系列長が足りないウィンドウの値はnilのままにします。
func ComputeIndicators(bars []qentity.Bar) entity.IndicatorSet {
	if len(bars) < minIndicatorBars {
		return entity.IndicatorSet{}
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = float64(b.Volume)
	}
	last := len(closes) - 1

	var set entity.IndicatorSet

	set.SMA20 = tail(talib.Sma(closes, 20))
	if len(closes) >= 50 {
		set.SMA50 = tail(talib.Sma(closes, 50))
	}
	set.RSI14 = ptr(simpleRSI(closes, 14))
	if len(closes) >= macdBars {
		macd, signal, _ := talib.Macd(closes, 12, 26, 9)
		set.MACD = ptr(macd[last])
		set.MACDSignal = ptr(signal[last])
	}

	window := closes[len(closes)-20:]
	mid := stat.Mean(window, nil)
	sd := stat.StdDev(window, nil)
	set.BBUpper = ptr(mid + 2*sd)
	set.BBLower = ptr(mid - 2*sd)

	avgVol := stat.Mean(volumes[len(volumes)-20:], nil)
	set.AvgVolume20 = ptr(avgVol)
	if avgVol > 0 {
		set.VolumeRatio = ptr(volumes[last] / avgVol)
	}

	recent := closes[len(closes)-5:]
	set.High5d = ptr(floats.Max(recent))
	set.Low5d = ptr(floats.Min(recent))

	return set
}

// simpleRSI は直近period本の終値差分から単純平均のRSIを計算します。
// 平均損失が0のときは最大値100を返します。
func simpleRSI(closes []float64, period int) float64 {
	window := closes[len(closes)-period-1:]

	var gain, loss float64
	for i := 1; i < len(window); i++ {
		d := window[i] - window[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}

	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

func tail(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	return &xs[len(xs)-1]
}

func ptr(v float64) *float64 { return &v }
