// Package entity はquotesフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// Bar represents one daily OHLCV bar of a price series.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
