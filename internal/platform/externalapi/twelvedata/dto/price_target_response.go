package dto

// PriceTargetResponse represents the JSON response from the Twelve Data
// price_target endpoint. Unlike time_series, numeric fields arrive as JSON
// numbers. A zero value means the field was absent from the consensus.
type PriceTargetResponse struct {
	Status       string  `json:"status"`
	Message      string  `json:"message,omitempty"`
	Symbol       string  `json:"symbol"`
	Average      float64 `json:"average"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	CurrentPrice float64 `json:"current_price"`
}
