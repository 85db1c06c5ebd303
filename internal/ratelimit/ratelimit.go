// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultLimit  = 5
	DefaultWindow = 60 * time.Second
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow keeps one counter per key in process memory. Entries are reset lazily
// when a check finds their window expired and are never evicted otherwise, so the
// counters are per instance and start over on restart.
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

// NewFixedWindow allows limit calls per key every window. Non-positive values fall back to the defaults.
func NewFixedWindow(limit int, win time.Duration) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if win <= 0 {
		win = DefaultWindow
	}
	return &FixedWindow{
		limit:   limit,
		window:  win,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock overrides the time source.
func (l *FixedWindow) WithClock(now func() time.Time) *FixedWindow {
	if now != nil {
		l.now = now
	}
	return l
}

func (l *FixedWindow) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Len reports how many keys are tracked.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
