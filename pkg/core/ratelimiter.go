package core

import (
	"context"
	"errors"
	"math"
	"time"
)

// RateLimiter throttles trial launches. Useful when the runner fronts a
// shared cluster or an API with request quotas.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

type launchBucket struct {
	tokens chan struct{}
	stop   chan struct{}
}

// NewRateLimiter returns a token-bucket limiter refilled at launchesPerSec
// with the given burst capacity, and a stop function that releases the refill
// goroutine.
func NewRateLimiter(launchesPerSec float64, burst int) (RateLimiter, func(), error) {
	if launchesPerSec <= 0 {
		return nil, func() {}, errors.New("rate limiter: launches per second must be > 0")
	}
	if burst <= 0 {
		burst = 1
	}

	interval := time.Duration(math.Round(float64(time.Second) / launchesPerSec))
	if interval <= 0 {
		interval = time.Nanosecond
	}

	lb := &launchBucket{
		tokens: make(chan struct{}, burst),
		stop:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		lb.tokens <- struct{}{}
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-lb.stop:
				return
			case <-ticker.C:
				select {
				case lb.tokens <- struct{}{}:
				default:
				}
			}
		}
	}()

	return lb, func() { close(lb.stop) }, nil
}

func (l *launchBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.tokens:
		return nil
	}
}
