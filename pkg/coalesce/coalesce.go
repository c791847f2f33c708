// Package coalesce runs at most one request per key at a time and delivers
// only the newest result.
package coalesce

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("coalescer closed")

type request[T any] struct {
	seq     uint64
	fn      func(context.Context) (T, error)
	deliver func(T, error)
}

type slot[T any] struct {
	seq       uint64 // newest submission
	cancel    context.CancelFunc
	pending   *request[T]
	cancelled bool
}

// Coalescer serializes work per key. A submission made while the key is
// busy replaces any older pending one and cancels the running one, whose
// result is then discarded.
type Coalescer[T any] struct {
	mu     sync.Mutex
	slots  map[string]*slot[T]
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
	logger *zap.Logger

	// beforeDeliver, when set, runs between a request finishing and its
	// delivery check.
	beforeDeliver func(key string)
}

func New[T any](logger *zap.Logger) *Coalescer[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coalescer[T]{
		slots:  make(map[string]*slot[T]),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Submit schedules fn for key. deliver receives the result unless a newer
// submission for the same key or a Cancel arrives first. deliver runs on
// the worker goroutine.
func (c *Coalescer[T]) Submit(key string, fn func(context.Context) (T, error), deliver func(T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	s, busy := c.slots[key]
	if !busy {
		s = &slot[T]{}
		c.slots[key] = s
	}
	s.seq++
	req := &request[T]{seq: s.seq, fn: fn, deliver: deliver}

	if busy {
		if s.pending != nil {
			c.logger.Debug("Pending request superseded", zap.String("key", key), zap.Uint64("seq", s.pending.seq))
		}
		s.pending = req
		if s.cancel != nil {
			s.cancel()
		}
		return nil
	}

	ctx, cancel := context.WithCancel(c.ctx)
	s.cancel = cancel
	c.wg.Add(1)
	go c.run(ctx, key, s, req)
	return nil
}

func (c *Coalescer[T]) run(ctx context.Context, key string, s *slot[T], req *request[T]) {
	defer c.wg.Done()
	for {
		v, err := req.fn(ctx)

		c.mu.Lock()
		s.cancel()
		c.mu.Unlock()

		if c.beforeDeliver != nil {
			c.beforeDeliver(key)
		}
		// The slot stays registered until delivery is decided so a Cancel
		// arriving in between still finds it.
		c.mu.Lock()
		deliver := !s.cancelled && req.seq == s.seq
		c.mu.Unlock()

		if deliver {
			req.deliver(v, err)
		} else {
			c.logger.Debug("Stale result discarded", zap.String("key", key), zap.Uint64("seq", req.seq))
		}

		c.mu.Lock()
		next := s.pending
		s.pending = nil
		if next == nil || s.cancelled {
			if c.slots[key] == s {
				delete(c.slots, key)
			}
			c.mu.Unlock()
			return
		}
		ctx, s.cancel = context.WithCancel(c.ctx)
		c.mu.Unlock()
		req = next
	}
}

// Cancel aborts the running request for key and discards anything pending.
// Nothing more is delivered for submissions made before the call.
func (c *Coalescer[T]) Cancel(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[key]
	if !ok {
		return
	}
	s.cancelled = true
	s.pending = nil
	if s.cancel != nil {
		s.cancel()
	}
	delete(c.slots, key)
}

// Busy reports whether key has a running request.
func (c *Coalescer[T]) Busy(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.slots[key]
	return ok
}

// Close cancels every request and waits for the workers to exit.
func (c *Coalescer[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for key, s := range c.slots {
		s.cancelled = true
		s.pending = nil
		delete(c.slots, key)
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
