// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// TimeSeriesValue is one OHLCV entry of a time_series response. Twelve Data
// sends every numeric field as a string.
type TimeSeriesValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

// TimeSeriesResponse represents the JSON response from the Twelve Data time_series endpoint.
// Values arrive newest first.
type TimeSeriesResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message,omitempty"`
	Symbol   string            `json:"symbol"`
	Interval string            `json:"interval"`
	Values   []TimeSeriesValue `json:"values"`
}
