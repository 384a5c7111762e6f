// Package entity はstrategyフィーチャーのドメインエンティティを定義します。
package entity

// IndicatorSet is the snapshot of technical indicators derived from a daily
// price series. A nil field means the series was too short for that window;
// fewer than 30 bars yields the zero value (no indicators at all).
type IndicatorSet struct {
	SMA20       *float64
	SMA50       *float64
	RSI14       *float64
	MACD        *float64
	MACDSignal  *float64
	BBUpper     *float64
	BBLower     *float64
	AvgVolume20 *float64
	VolumeRatio *float64
	High5d      *float64
	Low5d       *float64
}

// Empty reports whether no indicator could be computed.
func (s IndicatorSet) Empty() bool {
	return s == IndicatorSet{}
}
