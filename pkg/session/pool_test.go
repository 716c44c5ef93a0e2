package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("hands out blank sessions", func(t *testing.T) {
		t.Parallel()

		pool := session.NewPool(3)
		defer pool.Close()

		for range 7 {
			s, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			assert.Empty(t, s.ID())
			assert.Empty(t, s.Data())
		}
	})

	t.Run("default size", func(t *testing.T) {
		t.Parallel()

		pool := session.NewPool(0)
		defer pool.Close()

		assert.Equal(t, session.DefaultPoolSize, pool.Size())
	})

	t.Run("refills in batches of size", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		pool := session.NewPool(10, session.WithFactory(func() *session.Session {
			calls.Add(1)
			return session.NewSession("", "")
		}))
		defer pool.Close()

		for range 25 {
			_, err := pool.Acquire(context.Background())
			require.NoError(t, err)
		}

		assert.Equal(t, int32(30), calls.Load())
	})

	t.Run("acquire past the buffer blocks until refill", func(t *testing.T) {
		t.Parallel()

		gate := make(chan struct{})
		var calls atomic.Int32
		pool := session.NewPool(10, session.WithFactory(func() *session.Session {
			if calls.Add(1) > 10 {
				<-gate
			}
			return session.NewSession("", "")
		}))
		defer pool.Close()

		for range 10 {
			_, err := pool.Acquire(context.Background())
			require.NoError(t, err)
		}

		result := make(chan *session.Session, 1)
		go func() {
			s, err := pool.Acquire(context.Background())
			if err == nil {
				result <- s
			}
		}()

		select {
		case <-result:
			t.Fatal("acquire returned before the refill completed")
		case <-time.After(50 * time.Millisecond):
		}

		close(gate)

		select {
		case s := <-result:
			assert.Empty(t, s.ID())
		case <-time.After(time.Second):
			t.Fatal("acquire did not return after the refill")
		}
	})

	t.Run("acquire timeout", func(t *testing.T) {
		t.Parallel()

		gate := make(chan struct{})
		var calls atomic.Int32
		pool := session.NewPool(1,
			session.WithAcquireTimeout(20*time.Millisecond),
			session.WithFactory(func() *session.Session {
				if calls.Add(1) > 1 {
					<-gate
				}
				return session.NewSession("", "")
			}),
		)
		defer close(gate)
		defer pool.Close()

		_, err := pool.Acquire(context.Background())
		require.NoError(t, err)

		_, err = pool.Acquire(context.Background())
		assert.ErrorIs(t, err, session.ErrPoolExhausted)
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		gate := make(chan struct{})
		var calls atomic.Int32
		pool := session.NewPool(1, session.WithFactory(func() *session.Session {
			if calls.Add(1) > 1 {
				<-gate
			}
			return session.NewSession("", "")
		}))
		defer close(gate)
		defer pool.Close()

		_, err := pool.Acquire(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = pool.Acquire(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("close releases waiters", func(t *testing.T) {
		t.Parallel()

		gate := make(chan struct{})
		var calls atomic.Int32
		pool := session.NewPool(1, session.WithFactory(func() *session.Session {
			if calls.Add(1) > 1 {
				<-gate
			}
			return session.NewSession("", "")
		}))
		defer close(gate)

		_, err := pool.Acquire(context.Background())
		require.NoError(t, err)

		errCh := make(chan error, 1)
		go func() {
			_, err := pool.Acquire(context.Background())
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		pool.Close()
		pool.Close()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, session.ErrPoolClosed)
		case <-time.After(time.Second):
			t.Fatal("waiter was not released")
		}
	})

	t.Run("concurrent acquires get distinct sessions", func(t *testing.T) {
		t.Parallel()

		pool := session.NewPool(4)
		defer pool.Close()

		var (
			mu   sync.Mutex
			seen = make(map[*session.Session]struct{})
			wg   sync.WaitGroup
		)

		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 10 {
					s, err := pool.Acquire(context.Background())
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					seen[s] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, seen, 160)
	})
}
