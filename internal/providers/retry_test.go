package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithBackoffNoRetryOnPermanentError(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), func() error {
		calls++
		return errors.New("bad request")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("fn called %d times, want 1", calls)
	}
}

func TestWithBackoffSuccessFirstTry(t *testing.T) {
	calls := 0
	if err := WithBackoff(context.Background(), func() error {
		calls++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("fn called %d times", calls)
	}
}

func TestWithBackoffRetriesRateLimit(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("429 rate limit exceeded")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("fn called %d times, want 2", calls)
	}
}

func TestWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := WithBackoff(ctx, func() error {
		return errors.New("429 rate limit exceeded")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
