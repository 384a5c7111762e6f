package entity

import (
	"testing"
	"time"
)

func TestEntry_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		age         time.Duration
		marketAware bool
		marketOpen  bool
		want        bool
	}{
		{"fresh market-aware while closed", 30 * time.Minute, true, false, false},
		{"fresh market-aware while open", 30 * time.Minute, true, true, false},
		{"90min market-aware market open", 90 * time.Minute, true, true, true},
		{"90min market-aware market closed", 90 * time.Minute, true, false, false},
		{"2h non-aware market open", 2 * time.Hour, false, true, false},
		{"2h non-aware market closed", 2 * time.Hour, false, false, false},
		{"23h market-aware market closed", 23 * time.Hour, true, false, false},
		{"25h market-aware market closed", 25 * time.Hour, true, false, true},
		{"25h market-aware market open", 25 * time.Hour, true, true, true},
		{"25h non-aware", 25 * time.Hour, false, false, true},
		{"exactly 1h market-aware market open", time.Hour, true, true, false},
		{"just written", 0, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := &Entry{
				Endpoint:    "price-history",
				Symbol:      "AAPL",
				CachedAt:    now.Add(-tt.age),
				MarketAware: tt.marketAware,
			}

			if got := e.Expired(now, tt.marketOpen); got != tt.want {
				t.Errorf("Expired(age=%v, aware=%v, open=%v) = %v, want %v",
					tt.age, tt.marketAware, tt.marketOpen, got, tt.want)
			}
			if got := e.Fresh(now, tt.marketOpen); got == e.Expired(now, tt.marketOpen) {
				t.Errorf("Fresh and Expired agree for age=%v", tt.age)
			}
		})
	}
}
