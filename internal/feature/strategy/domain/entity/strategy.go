package entity

import (
	qentity "stockflow_backend/internal/feature/quotes/domain/entity"
)

// StrategyType は売買方針の分類です。
type StrategyType string

const (
	StrategyLong  StrategyType = "LONG"
	StrategyShort StrategyType = "SHORT"
	StrategyWait  StrategyType = "WAIT"
)

// Confidence はシグナルの確度です。
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ExitTarget is one profit-taking level, annotated with the gain relative to
// the current price.
type ExitTarget struct {
	Level   string  `json:"level"`
	Price   float64 `json:"price"`
	GainPct float64 `json:"gain_pct"`
}

// TechnicalLevels is the indicator snapshot embedded in a strategy for
// transparency. Unavailable values are omitted.
type TechnicalLevels struct {
	SMA20       *float64 `json:"sma_20,omitempty"`
	SMA50       *float64 `json:"sma_50,omitempty"`
	RSI         *float64 `json:"rsi,omitempty"`
	MACD        *float64 `json:"macd,omitempty"`
	MACDSignal  *float64 `json:"macd_signal,omitempty"`
	BBUpper     *float64 `json:"bb_upper,omitempty"`
	BBLower     *float64 `json:"bb_lower,omitempty"`
	VolumeRatio *float64 `json:"volume_ratio,omitempty"`
	High5d      *float64 `json:"high_5d,omitempty"`
	Low5d       *float64 `json:"low_5d,omitempty"`
}

// Strategy is the classifier output. The struct is serialized as-is into the
// cache and onto the wire, so the JSON tags are the public schema.
type Strategy struct {
	Ticker          string                  `json:"ticker"`
	StrategyType    StrategyType            `json:"strategy_type"`
	Confidence      Confidence              `json:"confidence"`
	CurrentPrice    *float64                `json:"current_price"`
	EntryTarget     *float64                `json:"entry_target"`
	ExitTargets     []ExitTarget            `json:"exit_targets"`
	StopLoss        *float64                `json:"stop_loss"`
	RiskRewardRatio *float64                `json:"risk_reward_ratio"`
	Signals         []string                `json:"signals"`
	TechnicalLevels TechnicalLevels         `json:"technical_levels"`
	AnalystTargets  *qentity.AnalystTargets `json:"analyst_targets"`
	Timeframe       string                  `json:"timeframe"`
	Error           string                  `json:"error,omitempty"`
}

// Levels converts an indicator set into the embeddable snapshot.
func (s IndicatorSet) Levels() TechnicalLevels {
	return TechnicalLevels{
		SMA20:       s.SMA20,
		SMA50:       s.SMA50,
		RSI:         s.RSI14,
		MACD:        s.MACD,
		MACDSignal:  s.MACDSignal,
		BBUpper:     s.BBUpper,
		BBLower:     s.BBLower,
		VolumeRatio: s.VolumeRatio,
		High5d:      s.High5d,
		Low5d:       s.Low5d,
	}
}
