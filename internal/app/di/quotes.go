// Package di provides dependency injection factories for creating application components.
package di

import (
	"stockflow_backend/internal/platform/externalapi/twelvedata"
	infrahttp "stockflow_backend/internal/platform/http"
)

// NewQuoteProvider creates a fully configured TwelveData client with HTTP client.
func NewQuoteProvider() *twelvedata.TwelveDataQuotes {
	cfg := twelvedata.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return twelvedata.NewTwelveDataQuotes(cfg, httpClient)
}
