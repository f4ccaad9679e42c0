package api

import (
	"sync"
	"testing"
	"time"
)

func TestAttemptLimiterWindowAndReset(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(1, time.Hour)
	key := "127.0.0.1"
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	limiter.addFailure(key, now.Add(-2*time.Hour))
	if limiter.blocked(key, now) {
		t.Fatal("expected old attempt to be pruned from active window")
	}

	limiter.addFailure(key, now.Add(-30*time.Minute))
	if !limiter.blocked(key, now) {
		t.Fatal("expected one recent attempt to hit limit 1")
	}
	if limiter.blocked("10.0.0.2", now) {
		t.Fatal("expected keys to be tracked independently")
	}

	limiter.reset(key)
	if limiter.blocked(key, now) {
		t.Fatal("expected no attempts after reset")
	}
}

func TestAttemptLimiterConcurrentFailures(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(50, time.Minute)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for index := 0; index < 50; index++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.addFailure("203.0.113.7", now)
		}()
	}
	wg.Wait()

	if !limiter.blocked("203.0.113.7", now) {
		t.Fatal("expected all concurrent failures to be counted")
	}
}
