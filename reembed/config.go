package reembed

import (
	"errors"
	"time"
)

var (
	// ErrInvalidBatchSize is returned when BatchSize is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidMaxRetries is returned when MaxRetries is not positive.
	ErrInvalidMaxRetries = errors.New("max retries must be greater than 0")
)

// Config holds tuning knobs for a reembedding run.
type Config struct {
	// BatchSize is the number of documents fetched per page.
	BatchSize int

	// ReportInterval is how often progress is reported, in documents.
	ReportInterval int

	// MaxRetries is the retry budget for each embedding call.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Validate checks the config for usable values.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxRetries <= 0 {
		return ErrInvalidMaxRetries
	}
	return nil
}
