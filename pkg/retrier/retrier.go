package retrier

import (
	"context"
	"time"
)

type Retrier interface {
	ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error
}

type ShouldRetryFunc func(error) bool

type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	Randomization   float64
	Multiplier      float64

	// MaxRetries caps the number of retries on top of MaxElapsedTime. Zero means no cap.
	MaxRetries uint64

	// nil retries every error; otherwise only errors for which it returns true.
	ShouldRetry ShouldRetryFunc
}
