package usecase

import (
	"fmt"
	"math"
	"sort"

	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
	"stockflow_backend/internal/feature/strategy/domain/entity"
)

const (
	// minStrategyBars を下回る系列は即座にWAITへフォールバックします。
	minStrategyBars = 20

	// 合計スコアがlongScore以上でLONG、shortScore以下でSHORT、
	// それ以外はWAITになります。一方向のトレンドはSMA2種とMACDで±3に達し、
	// RSI・ボリンジャーの逆張り側は最大1点しか打ち消しません。
	longScore  = 2
	shortScore = -2

	rsiOversold   = 30.0
	rsiOverbought = 70.0

	highVolumeRatio = 1.5
	lowVolumeRatio  = 0.7

	waitTimeframe  = "Wait for clearer signals before entering a position"
	swingTimeframe = "Swing trade (2-6 weeks)"
)

// Classify は価格系列とアナリスト目標から売買戦略を導出します。
// 入力がどれだけ欠けていてもpanicせず、必ずWAITへフォールバックします。
func Classify(ticker string, bars []qentity.Bar, targets *qentity.AnalystTargets) (st *entity.Strategy) {
	defer func() {
		if r := recover(); r != nil {
			st = fallbackStrategy(ticker, targets, fmt.Sprintf("Strategy computation failed: %v", r))
		}
	}()

	if bars == nil {
		return fallbackStrategy(ticker, targets, "Unable to fetch price data")
	}
	if len(bars) < minStrategyBars {
		return fallbackStrategy(ticker, targets,
			fmt.Sprintf("Insufficient price data: %d bars, need %d", len(bars), minStrategyBars))
	}

	current := bars[len(bars)-1].Close
	if current <= 0 || math.IsNaN(current) {
		return fallbackStrategy(ticker, targets, fmt.Sprintf("Invalid latest close: %v", current))
	}

	ind := ComputeIndicators(bars)
	score, signals := scoreSignals(current, ind)

	st = &entity.Strategy{
		Ticker:          ticker,
		CurrentPrice:    &current,
		ExitTargets:     []entity.ExitTarget{},
		Signals:         signals,
		TechnicalLevels: ind.Levels(),
		AnalystTargets:  targets,
	}

	switch {
	case score >= longScore:
		st.StrategyType = entity.StrategyLong
		buildLong(st, current, ind, targets)
	case score <= shortScore:
		st.StrategyType = entity.StrategyShort
		buildShort(st, current, ind, targets)
	default:
		st.StrategyType = entity.StrategyWait
		st.Confidence = entity.ConfidenceLow
		st.Timeframe = waitTimeframe
		return st
	}

	st.Confidence = confidenceFor(score, st.StrategyType, current, targets)
	st.RiskRewardRatio = riskReward(current, st.ExitTargets, st.StopLoss)
	st.Timeframe = swingTimeframe
	return st
}

// scoreSignals は固定のルーブリックで強気度スコアと根拠文字列を組み立てます。
// 計算できなかった指標は採点から除外されます。
func scoreSignals(current float64, ind entity.IndicatorSet) (int, []string) {
	score := 0
	signals := []string{}

	if ind.SMA20 != nil {
		if current > *ind.SMA20 {
			score++
			signals = append(signals, fmt.Sprintf("Price above SMA20 (%.2f) - bullish", *ind.SMA20))
		} else {
			score--
			signals = append(signals, fmt.Sprintf("Price below SMA20 (%.2f) - bearish", *ind.SMA20))
		}
	}

	if ind.SMA20 != nil && ind.SMA50 != nil {
		if *ind.SMA20 > *ind.SMA50 {
			score++
			signals = append(signals, "SMA20 above SMA50 - bullish trend")
		} else {
			score--
			signals = append(signals, "SMA20 below SMA50 - bearish trend")
		}
	}

	if ind.RSI14 != nil {
		switch {
		case *ind.RSI14 < rsiOversold:
			score++
			signals = append(signals, fmt.Sprintf("RSI oversold (%.1f) - potential bounce", *ind.RSI14))
		case *ind.RSI14 > rsiOverbought:
			score--
			signals = append(signals, fmt.Sprintf("RSI overbought (%.1f) - potential pullback", *ind.RSI14))
		}
	}

	if ind.MACD != nil && ind.MACDSignal != nil {
		if *ind.MACD > *ind.MACDSignal {
			score++
			signals = append(signals, "MACD above signal line - bullish crossover")
		} else {
			score--
			signals = append(signals, "MACD below signal line - bearish crossover")
		}
	}

	if ind.BBUpper != nil && ind.BBLower != nil {
		switch {
		case current <= *ind.BBLower:
			score++
			signals = append(signals, "Price at lower Bollinger band - potential bounce")
		case current >= *ind.BBUpper:
			score--
			signals = append(signals, "Price at upper Bollinger band - potential pullback")
		}
	}

	if ind.VolumeRatio != nil {
		switch {
		case *ind.VolumeRatio > highVolumeRatio && score > 0:
			score++
			signals = append(signals, fmt.Sprintf("High volume (%.1fx average) confirms the move", *ind.VolumeRatio))
		case *ind.VolumeRatio > highVolumeRatio && score < 0:
			score--
			signals = append(signals, fmt.Sprintf("High volume (%.1fx average) confirms the move", *ind.VolumeRatio))
		case *ind.VolumeRatio < lowVolumeRatio:
			signals = append(signals, fmt.Sprintf("Low volume (%.1fx average) - weak conviction", *ind.VolumeRatio))
		}
	}

	return score, signals
}

func buildLong(st *entity.Strategy, current float64, ind entity.IndicatorSet, targets *qentity.AnalystTargets) {
	entry := current
	if ind.SMA20 != nil && *ind.SMA20 < entry {
		entry = *ind.SMA20
	}

	stop := current * 0.95
	if ind.SMA50 != nil && *ind.SMA50 < stop {
		stop = *ind.SMA50
	}
	if stop >= entry {
		stop = entry * 0.95
	}

	cands := []levelCandidate{}
	if ind.BBUpper != nil {
		cands = append(cands, levelCandidate{"Bollinger upper band", *ind.BBUpper})
	}
	if ind.High5d != nil {
		cands = append(cands, levelCandidate{"Recent 5-day high", *ind.High5d})
	}
	if targets != nil {
		if targets.Mean != nil {
			cands = append(cands, levelCandidate{"Analyst mean target", *targets.Mean})
		}
		if targets.High != nil {
			cands = append(cands, levelCandidate{"Analyst high target", *targets.High})
		}
	}
	cands = append(cands,
		levelCandidate{"Measured move +5%", current * 1.05},
		levelCandidate{"Measured move +10%", current * 1.10},
	)

	st.EntryTarget = ptr(round2(entry))
	st.StopLoss = ptr(round2(stop))
	st.ExitTargets = pickExits(current, cands, true)
}

func buildShort(st *entity.Strategy, current float64, ind entity.IndicatorSet, targets *qentity.AnalystTargets) {
	entry := current
	if ind.SMA20 != nil && *ind.SMA20 > entry {
		entry = *ind.SMA20
	}

	stop := current * 1.05
	if ind.SMA50 != nil && *ind.SMA50 > stop {
		stop = *ind.SMA50
	}
	if stop <= entry {
		stop = entry * 1.05
	}

	cands := []levelCandidate{}
	if ind.BBLower != nil {
		cands = append(cands, levelCandidate{"Bollinger lower band", *ind.BBLower})
	}
	if ind.Low5d != nil {
		cands = append(cands, levelCandidate{"Recent 5-day low", *ind.Low5d})
	}
	if targets != nil {
		if targets.Mean != nil {
			cands = append(cands, levelCandidate{"Analyst mean target", *targets.Mean})
		}
		if targets.Low != nil {
			cands = append(cands, levelCandidate{"Analyst low target", *targets.Low})
		}
	}
	cands = append(cands,
		levelCandidate{"Measured move -5%", current * 0.95},
		levelCandidate{"Measured move -10%", current * 0.90},
	)

	st.EntryTarget = ptr(round2(entry))
	st.StopLoss = ptr(round2(stop))
	st.ExitTargets = pickExits(current, cands, false)
}

type levelCandidate struct {
	level string
	price float64
}

// pickExits は現在値の先にある水準だけを残し、利確方向へ単調に並ぶ
// 最大3件のターゲットへ変換します。丸め後に重複した水準は捨てます。
func pickExits(current float64, cands []levelCandidate, above bool) []entity.ExitTarget {
	kept := make([]levelCandidate, 0, len(cands))
	for _, c := range cands {
		p := round2(c.price)
		if above && p > current {
			kept = append(kept, levelCandidate{c.level, p})
		}
		if !above && p < current {
			kept = append(kept, levelCandidate{c.level, p})
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if above {
			return kept[i].price < kept[j].price
		}
		return kept[i].price > kept[j].price
	})

	out := make([]entity.ExitTarget, 0, 3)
	var prev float64
	for _, c := range kept {
		if len(out) == 3 {
			break
		}
		if len(out) > 0 && c.price == prev {
			continue
		}
		gain := (c.price - current) / current * 100
		if !above {
			gain = -gain
		}
		out = append(out, entity.ExitTarget{Level: c.level, Price: c.price, GainPct: round2(gain)})
		prev = c.price
	}
	return out
}

func confidenceFor(score int, typ entity.StrategyType, current float64, targets *qentity.AnalystTargets) entity.Confidence {
	strong := score >= 4 || score <= -4
	agrees := analystAgrees(typ, current, targets)
	switch {
	case strong && agrees:
		return entity.ConfidenceHigh
	case strong || agrees:
		return entity.ConfidenceMedium
	default:
		return entity.ConfidenceLow
	}
}

// analystAgrees はアナリスト平均目標が戦略の方向と一致するかを判定します。
func analystAgrees(typ entity.StrategyType, current float64, targets *qentity.AnalystTargets) bool {
	if targets == nil || targets.Mean == nil {
		return false
	}
	if typ == entity.StrategyLong {
		return *targets.Mean > current
	}
	return *targets.Mean < current
}

// riskReward は平均利確幅と損切り幅の比を返します。幅が定義できない場合はnilです。
func riskReward(current float64, exits []entity.ExitTarget, stop *float64) *float64 {
	if stop == nil || len(exits) == 0 {
		return nil
	}
	risk := math.Abs(current - *stop)
	if risk == 0 {
		return nil
	}

	var sum float64
	for _, e := range exits {
		sum += math.Abs(e.Price - current)
	}
	return ptr(round2(sum / float64(len(exits)) / risk))
}

func fallbackStrategy(ticker string, targets *qentity.AnalystTargets, reason string) *entity.Strategy {
	return &entity.Strategy{
		Ticker:         ticker,
		StrategyType:   entity.StrategyWait,
		Confidence:     entity.ConfidenceLow,
		ExitTargets:    []entity.ExitTarget{},
		Signals:        []string{},
		AnalystTargets: targets,
		Timeframe:      waitTimeframe,
		Error:          reason,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
