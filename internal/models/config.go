package models

import "time"

// UpdateConfig contains configuration for an update run
type UpdateConfig struct {
	// Input
	PackageFiles []string

	// Fetching
	UserAgent  string
	MaxRetries int
	Timeout    time.Duration
}
