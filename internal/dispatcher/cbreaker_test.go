package dispatcher

import (
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !b.Ready() || !b.TryAcquire() {
			t.Fatalf("breaker should be closed before failure %d", i)
		}
		b.OnFailure()
	}

	if b.Ready() {
		t.Fatal("breaker should be open after threshold failures")
	}
	if b.TryAcquire() {
		t.Fatal("open breaker must not acquire before the window elapses")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.TryAcquire()
	b.OnFailure()
	if b.Ready() {
		t.Fatal("should be open")
	}

	// window elapses
	now = now.Add(2 * time.Minute)
	if !b.Ready() {
		t.Fatal("should allow a probe after the window")
	}
	if !b.TryAcquire() {
		t.Fatal("first probe should acquire")
	}
	if b.TryAcquire() {
		t.Fatal("only one probe may be in flight")
	}

	// probe fails: back to open for another window
	b.OnFailure()
	if b.Ready() {
		t.Fatal("failed probe should reopen the breaker")
	}

	now = now.Add(2 * time.Minute)
	if !b.TryAcquire() {
		t.Fatal("second probe should acquire after another window")
	}
	b.OnSuccess()
	if !b.Ready() || !b.TryAcquire() {
		t.Fatal("successful probe should close the breaker")
	}
}

func TestBreakerSuccessResetsFailCount(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	b.OnFailure()
	b.OnSuccess()
	b.OnFailure()

	if !b.Ready() {
		t.Fatal("non-consecutive failures must not open the breaker")
	}
}
