package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter spaces out page navigations against the target site. Wait
// blocks until the next fetch is allowed or the context is cancelled.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Jittered enforces a randomized minimum gap between actions. The gap
// is drawn uniformly from [min, max) on every call, so fetch timing
// never settles into a fixed cadence. Safe for concurrent use; the
// gap is global, not per caller.
type Jittered struct {
	min  time.Duration
	max  time.Duration
	mu   sync.Mutex
	last time.Time
}

func NewJittered(min, max time.Duration) *Jittered {
	if max < min {
		max = min
	}
	return &Jittered{min: min, max: max}
}

func (j *Jittered) Wait(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	gap := j.gap()
	if elapsed := time.Since(j.last); elapsed < gap {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(gap - elapsed):
		}
	}

	j.last = time.Now()
	return nil
}

func (j *Jittered) gap() time.Duration {
	if j.max <= j.min {
		return j.min
	}
	return j.min + time.Duration(rand.Int63n(int64(j.max-j.min)))
}
