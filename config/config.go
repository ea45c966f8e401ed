package config

import (
	"time"
)

// Config holds the application configuration.
type Config struct {
	MongoURI           string
	Database           string
	ImportDir          string
	ProcessedDir       string
	MoveProcessedFiles bool
	PaymentsAPIBase    string
	PaymentsAPIKey     string
	SampleDataDir      string
	SampleDataRows     int
	Timeout            time.Duration
}
