package config

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// DoWithBackoff sends req, retrying transport failures with exponential
// backoff and jitter. maxRetries of 0 retries until ctx is done.
//
// Any HTTP response, including error statuses, is returned to the caller
// as is.
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	delay := BASE_BACKOFF
	req = req.WithContext(ctx)

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if maxRetries > 0 && attempt >= maxRetries {
			return nil, fmt.Errorf("max retries exceeded after %d attempts: %w", attempt+1, err)
		}

		timer := time.NewTimer(withJitter(delay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay = calculateNewBackoffDelay(delay)
	}
}

func withJitter(delay time.Duration) time.Duration {
	delay += time.Duration(rand.Float64() * float64(delay) * JITTER_FACTOR)
	return min(delay, MAX_BACKOFF)
}
