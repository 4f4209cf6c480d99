// Package ratelimit provides fixed-window request limiting backed either by
// process memory or by Redis, plus the HTTP middleware that applies it.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// Limiter decides whether one more hit for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
	Close()
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

// Memory is an in-process fixed-window Limiter. Expired windows are swept
// periodically until Close is called.
type Memory struct {
	mu      sync.Mutex
	entries map[string]window
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	count int
	end   time.Time
}

// NewMemory starts a Memory limiter and its sweep goroutine.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, key string, limit int, win time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if win <= 0 {
		win = time.Minute
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.entries[key]
	if !ok || now.After(w.end) {
		w = window{count: 1, end: now.Add(win)}
		m.entries[key] = w
		return Decision{Allowed: true, Count: w.count, WindowEnd: w.end}
	}
	if w.count >= limit {
		return Decision{Allowed: false, Count: w.count, WindowEnd: w.end}
	}
	w.count++
	m.entries[key] = w
	return Decision{Allowed: true, Count: w.count, WindowEnd: w.end}
}

// Close stops the sweep goroutine. It is safe to call more than once.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep(m.now())
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, w := range m.entries {
		if now.After(w.end) {
			delete(m.entries, key)
		}
	}
}
