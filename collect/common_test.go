package collect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestIsRetryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"too many requests", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"wrapped too many requests", fmt.Errorf("list: %w", &googleapi.Error{Code: http.StatusTooManyRequests}), true},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := isRetryError(tt.err); got != tt.want {
			t.Errorf("%s: isRetryError = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWithRetry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), "test", func() error {
		calls++
		if calls == 1 {
			return &googleapi.Error{Code: http.StatusTooManyRequests}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("expected success on second call, got %v after %d calls", err, calls)
	}

	calls = 0
	boom := errors.New("boom")
	err = withRetry(context.Background(), "test", func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("expected one call for a non-retryable error, got %v after %d calls", err, calls)
	}
}
