package session

import (
	"context"
	"sync"
	"time"
)

// DefaultPoolSize is the number of sessions created per refill.
const DefaultPoolSize = 10

// Pool hands out blank sessions from a pre-filled buffer. When the buffer is
// used up, Acquire wakes the replenisher goroutine and blocks until a fresh
// buffer of Size sessions is installed.
type Pool struct {
	size    int
	timeout time.Duration
	factory func() *Session

	mu       sync.Mutex
	buf      []*Session
	cursor   int
	refilled chan struct{} // closed when the pending refill completes; nil when none is pending

	requests  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithAcquireTimeout bounds how long Acquire waits for a refill.
// Zero waits indefinitely.
func WithAcquireTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithFactory replaces the constructor used to fill the pool.
// The factory must return blank sessions.
func WithFactory(fn func() *Session) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.factory = fn
		}
	}
}

// NewPool creates a pool of the given size, fills it and starts the
// replenisher. Close stops the replenisher.
func NewPool(size int, opts ...PoolOption) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	p := &Pool{
		size:     size,
		factory:  newBlankSession,
		requests: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.buf = p.fill()

	go p.replenish()

	return p
}

// Size returns the number of sessions created per refill.
func (p *Pool) Size() int {
	return p.size
}

// Acquire returns the next blank session. It blocks while the pool is being
// refilled and returns ErrPoolExhausted if the acquire timeout elapses first.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	var timeout <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		p.mu.Lock()
		if p.cursor < len(p.buf) {
			s := p.buf[p.cursor]
			p.buf[p.cursor] = nil
			p.cursor++
			p.mu.Unlock()
			return s, nil
		}

		wait := p.refilled
		if wait == nil {
			wait = make(chan struct{})
			p.refilled = wait
			select {
			case p.requests <- struct{}{}:
			default:
				// A request is already queued
			}
		}
		p.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, ErrPoolExhausted
		case <-p.done:
			return nil, ErrPoolClosed
		}
	}
}

// Close stops the replenisher and releases blocked callers with ErrPoolClosed.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

// replenish builds a new buffer each time Acquire finds the current one empty.
func (p *Pool) replenish() {
	for {
		select {
		case <-p.done:
			return
		case <-p.requests:
		}

		fresh := p.fill()

		p.mu.Lock()
		p.buf = fresh
		p.cursor = 0
		wait := p.refilled
		p.refilled = nil
		p.mu.Unlock()

		if wait != nil {
			close(wait)
		}
	}
}

func (p *Pool) fill() []*Session {
	buf := make([]*Session, p.size)
	for i := range buf {
		buf[i] = p.factory()
	}
	return buf
}
