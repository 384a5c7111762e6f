package usecase

import (
	"fmt"
	"strings"

	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	sentity "stockflow_backend/internal/feature/strategy/domain/entity"
)

// renderSnapshot は日足と指標を行単位のスナップショットに整形します。
// 計算できなかった指標は行ごと省略します。
func renderSnapshot(bars []qentity.Bar, ind sentity.IndicatorSet) string {
	last := bars[len(bars)-1]

	var b strings.Builder
	fmt.Fprintf(&b, "latest close: %.2f (%s)\n", last.Close, last.Time.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "bars: %d\n", len(bars))
	writeLevel(&b, "sma20", ind.SMA20)
	writeLevel(&b, "sma50", ind.SMA50)
	writeLevel(&b, "rsi14", ind.RSI14)
	writeLevel(&b, "macd", ind.MACD)
	writeLevel(&b, "macd signal", ind.MACDSignal)
	writeLevel(&b, "bollinger upper", ind.BBUpper)
	writeLevel(&b, "bollinger lower", ind.BBLower)
	writeLevel(&b, "volume ratio", ind.VolumeRatio)
	writeLevel(&b, "5-day high", ind.High5d)
	writeLevel(&b, "5-day low", ind.Low5d)
	return b.String()
}

// renderStrategy は戦略計算の結果をプロンプト向けの要約に整形します。
func renderStrategy(st *sentity.Strategy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "strategy: %s\n", st.StrategyType)
	fmt.Fprintf(&b, "confidence: %s\n", st.Confidence)
	writeLevel(&b, "current price", st.CurrentPrice)
	writeLevel(&b, "entry target", st.EntryTarget)
	writeLevel(&b, "stop loss", st.StopLoss)
	writeLevel(&b, "risk/reward", st.RiskRewardRatio)
	for _, et := range st.ExitTargets {
		fmt.Fprintf(&b, "exit (%s): %.2f (%+.1f%%)\n", et.Level, et.Price, et.GainPct)
	}
	if len(st.Signals) > 0 {
		b.WriteString("signals:\n")
		for _, s := range st.Signals {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if !st.AnalystTargets.Empty() {
		writeLevel(&b, "analyst mean target", st.AnalystTargets.Mean)
		writeLevel(&b, "analyst high target", st.AnalystTargets.High)
		writeLevel(&b, "analyst low target", st.AnalystTargets.Low)
	}
	return b.String()
}

func writeLevel(b *strings.Builder, label string, v *float64) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "%s: %.2f\n", label, *v)
}
