package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if res.Allowed {
		t.Fatalf("4th hit should be blocked")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter must be positive when blocked, got %v", res.RetryAfter)
	}

	// Otra key no comparte contador.
	res, _ = l.Allow(ctx, "5.6.7.8")
	if !res.Allowed {
		t.Fatalf("different key must not be throttled")
	}
}
