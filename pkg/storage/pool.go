package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Factory creates one backend connection
type Factory func(ctx context.Context) (Backend, error)

// Pinger is implemented by backends that can cheaply verify their
// connection is still alive
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolConfig holds configuration for a connection pool
type PoolConfig struct {
	// Size is the number of connections, which caps how many
	// transactions can be in flight at once
	Size int

	// MaxIdle is how long an unused connection is trusted before it is
	// closed and re-dialed on next acquire (0 = 5 minutes)
	MaxIdle time.Duration

	// HealthCheck pings a connection before handing it out
	HealthCheck bool
}

// PoolStats holds health counters for a pool
type PoolStats struct {
	Size      int
	InUse     int
	Acquires  int64
	Failures  int64
	Recycled  int64
	LastError string
}

// Pool is a bounded pool of backend connections. A transaction holds
// exclusive use of one connection from Acquire until Release; the pool
// size is therefore the concurrency cap for remote operations.
type Pool struct {
	factory     Factory
	maxIdle     time.Duration
	healthCheck bool

	// tokens caps how many slots are checked out at once
	tokens chan struct{}

	mu       sync.Mutex
	free     []*poolSlot
	closed   bool
	inUse    int
	acquires int64
	failures int64
	recycled int64
	lastErr  error
}

type poolSlot struct {
	backend  Backend
	lastUsed time.Time
}

// NewPool creates a pool of cfg.Size lazily dialed connections
func NewPool(factory Factory, cfg PoolConfig) *Pool {
	size := cfg.Size
	if size < 1 {
		size = 1
	}
	maxIdle := cfg.MaxIdle
	if maxIdle == 0 {
		maxIdle = 5 * time.Minute
	}

	p := &Pool{
		factory:     factory,
		maxIdle:     maxIdle,
		healthCheck: cfg.HealthCheck,
		tokens:      make(chan struct{}, size),
		free:        make([]*poolSlot, 0, size),
	}
	for i := 0; i < size; i++ {
		p.tokens <- struct{}{}
		p.free = append(p.free, &poolSlot{})
	}
	return p
}

// Acquire checks out one connection, dialing a fresh one if the slot is
// empty, stale or fails its health check. Warm connections are preferred
// over undialed slots. Blocks until a slot frees up or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("pool is closed")
	}
	p.mu.Unlock()

	select {
	case <-p.tokens:
	case <-ctx.Done():
		return nil, NewError(KindConnectivity, "acquire", "", ctx.Err())
	}

	slot := p.takeSlot()
	backend, err := p.prepare(ctx, slot)
	if err != nil {
		p.mu.Lock()
		p.failures++
		p.lastErr = err
		p.free = append(p.free, slot)
		p.mu.Unlock()
		p.tokens <- struct{}{}
		return nil, err
	}

	p.mu.Lock()
	p.acquires++
	p.inUse++
	p.mu.Unlock()

	return &Lease{Backend: backend, pool: p, slot: slot}, nil
}

// takeSlot removes one slot from the free list, picking the most
// recently released live connection before any undialed slot. Only
// called with a token held, so the list is never empty.
func (p *Pool) takeSlot() *poolSlot {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.free) - 1; i >= 0; i-- {
		if p.free[i].backend != nil {
			slot := p.free[i]
			p.free = append(p.free[:i], p.free[i+1:]...)
			return slot
		}
	}
	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return slot
}

// prepare makes sure the slot holds a usable connection
func (p *Pool) prepare(ctx context.Context, slot *poolSlot) (Backend, error) {
	stale := slot.backend != nil && time.Since(slot.lastUsed) > p.maxIdle
	if stale {
		slot.backend.Close()
		slot.backend = nil
		p.mu.Lock()
		p.recycled++
		p.mu.Unlock()
	}

	if slot.backend != nil && p.healthCheck {
		if pinger, ok := slot.backend.(Pinger); ok {
			if err := pinger.Ping(ctx); err != nil {
				slot.backend.Close()
				slot.backend = nil
				p.mu.Lock()
				p.recycled++
				p.mu.Unlock()
			}
		}
	}

	if slot.backend == nil {
		backend, err := p.factory(ctx)
		if err != nil {
			return nil, err
		}
		slot.backend = backend
	}

	return slot.backend, nil
}

// release returns the slot, discarding the connection after a
// connectivity failure so the next acquire re-dials
func (p *Pool) release(slot *poolSlot, opErr error) {
	if opErr != nil && Transient(opErr) && slot.backend != nil {
		slot.backend.Close()
		slot.backend = nil
		p.mu.Lock()
		p.recycled++
		p.lastErr = opErr
		p.mu.Unlock()
	}
	slot.lastUsed = time.Now()

	p.mu.Lock()
	p.inUse--
	p.free = append(p.free, slot)
	p.mu.Unlock()

	p.tokens <- struct{}{}
}

// Stats returns a snapshot of the pool's health counters
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := PoolStats{
		Size:     cap(p.tokens),
		InUse:    p.inUse,
		Acquires: p.acquires,
		Failures: p.failures,
		Recycled: p.recycled,
	}
	if p.lastErr != nil {
		stats.LastError = p.lastErr.Error()
	}
	return stats
}

// Close drains the pool and closes every connection. Blocks until all
// leases have been released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	for i := 0; i < cap(p.tokens); i++ {
		<-p.tokens
	}

	p.mu.Lock()
	slots := p.free
	p.free = nil
	p.mu.Unlock()

	var firstErr error
	for _, slot := range slots {
		if slot.backend != nil {
			if err := slot.backend.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
			slot.backend = nil
		}
	}
	return firstErr
}

// Lease is a scoped checkout of one pooled connection
type Lease struct {
	Backend

	pool     *Pool
	slot     *poolSlot
	mu       sync.Mutex
	released bool
}

// Release returns the connection to the pool. opErr is the last error
// the holder saw on this connection, nil when everything succeeded;
// connectivity failures cause the connection to be discarded instead of
// reused. Safe to call more than once.
func (l *Lease) Release(opErr error) {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return
	}
	l.released = true
	l.mu.Unlock()

	l.pool.release(l.slot, opErr)
}
