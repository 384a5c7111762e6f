// Package usecase implements the business logic for the apicache feature.
package usecase

import "errors"

var (
	// ErrEntryNotFound is returned by the repository when no row exists for
	// the requested (endpoint, symbol) key.
	ErrEntryNotFound = errors.New("cache entry not found")
)
