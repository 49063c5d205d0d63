package locker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SerializesSameKey(t *testing.T) {
	locker := NewMemory()

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock, err := locker.Lock(context.Background(), "wf-1")
			if !assert.NoError(t, err) {
				return
			}

			current := inside.Add(1)
			if current > maxSeen.Load() {
				maxSeen.Store(current)
			}

			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Empty(t, locker.entries)
}

func TestMemory_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewMemory()

	unlockA, err := locker.Lock(t.Context(), "a")
	require.NoError(t, err)

	defer unlockA()

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	unlockB, err := locker.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestMemory_ContextCancelWhileWaiting(t *testing.T) {
	locker := NewMemory()

	unlock, err := locker.Lock(t.Context(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()

	assert.Empty(t, locker.entries)
}
