package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJitteredEnforcesGap(t *testing.T) {
	l := NewJittered(50*time.Millisecond, 50*time.Millisecond)

	require.NoError(t, l.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestJitteredFirstCallDoesNotBlock(t *testing.T) {
	l := NewJittered(time.Hour, time.Hour)

	done := make(chan error, 1)
	go func() { done <- l.Wait(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first Wait call blocked")
	}
}

func TestJitteredHonorsCancellation(t *testing.T) {
	l := NewJittered(time.Hour, time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestJitteredGapWithinBounds(t *testing.T) {
	l := NewJittered(10*time.Millisecond, 30*time.Millisecond)
	for i := 0; i < 100; i++ {
		g := l.gap()
		assert.GreaterOrEqual(t, g, 10*time.Millisecond)
		assert.Less(t, g, 30*time.Millisecond)
	}
}
