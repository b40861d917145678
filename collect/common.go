package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
)

// Name of the container file on the device.
const PhotoDbFileName = "Photo Database"

const maxAttempts = 4

var lock sync.RWMutex

var throttler = rate.NewLimiter(10, 2)

func isRetryError(err error) bool {
	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		statusCode := googleErr.Code
		if statusCode == http.StatusTooManyRequests {
			return true
		}
		slog.Warn("Unknown Google API error", "code", statusCode, "error", err)
	}
	return false
}

// withRetry runs fn under the shared throttler, retrying while Google reports rate limiting.
func withRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		if err := throttler.Wait(ctx); err != nil {
			return fmt.Errorf("throttler wait for %s: %w", op, err)
		}
		err := fn()
		if err == nil || attempt == maxAttempts || !isRetryError(err) {
			return err
		}
		backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
		slog.Warn("Rate limited by Google API, retrying",
			"operation", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
