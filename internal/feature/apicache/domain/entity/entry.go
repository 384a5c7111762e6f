// Package entity defines the domain entities for the apicache feature.
package entity

import (
	"encoding/json"
	"time"
)

const (
	// MaxAge is the unconditional freshness bound. A row older than this is
	// expired no matter what the market is doing.
	MaxAge = 24 * time.Hour

	// OpenSessionTTL is the freshness bound applied to market-aware rows
	// while the exchange is trading.
	OpenSessionTTL = time.Hour
)

// Entry is one cached API payload, uniquely keyed by (Endpoint, Symbol).
// Payload holds JSON text of any shape; the cache is schema-agnostic across
// endpoints.
type Entry struct {
	Endpoint    string          // Logical resource name (e.g. "price-history")
	Symbol      string          // Ticker, stored uppercase
	Payload     json.RawMessage // JSON text of any shape
	CachedAt    time.Time       // Last write time (UTC)
	MarketAware bool            // Selects which expiration rule applies
}

// Expired reports whether the entry has gone stale at the given instant.
// The marketOpen flag must describe the same instant.
//
// Rules, in priority order:
//  1. Older than MaxAge: expired regardless of market state.
//  2. Market-aware rows age out after OpenSessionTTL while the market is open.
//  3. Everything else is still fresh.
func (e *Entry) Expired(now time.Time, marketOpen bool) bool {
	age := now.Sub(e.CachedAt)
	if age > MaxAge {
		return true
	}
	if e.MarketAware && marketOpen && age > OpenSessionTTL {
		return true
	}
	return false
}

// Fresh is the negation of Expired.
func (e *Entry) Fresh(now time.Time, marketOpen bool) bool {
	return !e.Expired(now, marketOpen)
}

// EndpointCount is one per-endpoint bucket in Stats.
type EndpointCount struct {
	Endpoint string
	Count    int64
}

// Stats summarizes the cache contents at one instant. Valid counts rows that
// currently pass the expiration rules; ByEndpoint buckets only valid rows,
// ordered by descending count. MarketStatus records which expiration regime
// was in force when the counts were taken.
type Stats struct {
	Total        int64
	Valid        int64
	Expired      int64
	ByEndpoint   []EndpointCount
	MarketStatus string
}
