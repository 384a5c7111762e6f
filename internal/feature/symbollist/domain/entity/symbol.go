// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol is a tracked stock ticker. Active symbols are served to clients
// and pre-fetched by the cache warmer; inactive ones stay in the table
// but are excluded from both.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:100;not null"` // e.g. "NASDAQ", "NYSE"
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
