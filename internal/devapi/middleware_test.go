package devapi

import (
	"testing"
	"time"
)

func TestIPBucketsSweepEvictsStale(t *testing.T) {
	l := newIPBuckets(1, 1)
	base := time.Now()

	l.allow("10.0.0.1", base)
	l.allow("10.0.0.2", base.Add(4*time.Minute))

	// The next call lands past both the sweep interval and the first
	// bucket's ttl, so the sweep runs and only the fresh bucket survives.
	l.allow("10.0.0.3", base.Add(6*time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.buckets["10.0.0.1"]; ok {
		t.Fatal("stale bucket survived the sweep")
	}
	if _, ok := l.buckets["10.0.0.2"]; !ok {
		t.Fatal("fresh bucket evicted by the sweep")
	}
	if _, ok := l.buckets["10.0.0.3"]; !ok {
		t.Fatal("current bucket missing after the sweep")
	}
}

func TestIPBucketsSweepThrottled(t *testing.T) {
	l := newIPBuckets(1, 1)
	base := time.Now()

	l.allow("10.0.0.1", base)
	// Well past the ttl, but only 30s since the last sweep: the stale
	// bucket must not be scanned yet.
	l.ttl = 10 * time.Second
	l.allow("10.0.0.2", base.Add(30*time.Second))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.buckets["10.0.0.1"]; !ok {
		t.Fatal("sweep ran before the sweep interval elapsed")
	}
}
