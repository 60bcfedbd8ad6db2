package constants

import "time"

const (
	ExternalAPITimeout = 15 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	EnrichmentTimeout  = 8 * time.Second
)

const (
	DBMaxOpenConns    = 1 // sqlite single-writer
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
)

const (
	// Sync runs that finish faster than this almost certainly hit
	// nothing but cache or errors.
	MinPlausibleSyncDuration = 1 * time.Second

	RatingRefreshTTL = 6 * time.Hour
)
