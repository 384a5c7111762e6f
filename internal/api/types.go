// Package api defines the shared request/response types for the HTTP API.
// Feature-specific request bodies live in each feature's transport/http/dto
// package; the types here are the ones used across multiple handlers.
package api

// ErrorResponse is the uniform error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a simple acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenPairResponse is returned on successful login and token refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// BarResponse is one OHLCV bar in a price-history response.
type BarResponse struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// AnalystTargetsResponse carries analyst price targets for a symbol.
// Fields are pointers because the upstream provider may omit any of them.
type AnalystTargetsResponse struct {
	Mean    *float64 `json:"mean"`
	High    *float64 `json:"high"`
	Low     *float64 `json:"low"`
	Current *float64 `json:"current"`
}

// CommentaryResponse is the body of the AI commentary endpoints.
type CommentaryResponse struct {
	Symbol    string `json:"symbol"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	Model     string `json:"model"`
	CachedAt  string `json:"cached_at,omitempty"`
	FromCache bool   `json:"from_cache"`
}

// EndpointCountResponse is one per-endpoint bucket in the cache stats.
type EndpointCountResponse struct {
	Endpoint string `json:"endpoint"`
	Count    int64  `json:"count"`
}

// CacheStatsResponse is the body of GET /v1/cache/stats.
type CacheStatsResponse struct {
	Total        int64                   `json:"total_entries"`
	Valid        int64                   `json:"valid_entries"`
	Expired      int64                   `json:"expired_entries"`
	ByEndpoint   []EndpointCountResponse `json:"by_endpoint"`
	MarketStatus string                  `json:"market_status"`
}

// RemovedResponse reports how many cache rows a clear or sweep removed.
type RemovedResponse struct {
	Removed int64 `json:"removed"`
}

// SymbolResponse is one tracked symbol in GET /v1/symbols.
type SymbolResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// HealthLLMResponse is the body of GET /v1/health/llm.
type HealthLLMResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}
