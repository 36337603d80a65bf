// Package ratelimit implements a per-client fixed window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a call to Admit. RetryAfter is the time remaining until the
// client's window resets and is only set for rejected requests.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

type Option func(*Limiter)

// WithClock replaces the wall clock, e.g. with a fake clock for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter admits at most max requests per identity in each window. A client's window starts
// with its first request and the count is reset once the window has expired.
type Limiter struct {
	window time.Duration
	max    int
	now    func() time.Time

	guard   sync.Mutex
	clients map[string]*client
	sweep   time.Time
}

type client struct {
	count int
	start time.Time
}

func NewLimiter(window time.Duration, limit int, options ...Option) *Limiter {
	l := Limiter{
		window:  window,
		max:     limit,
		now:     time.Now,
		clients: map[string]*client{},
	}

	for _, option := range options {
		option(&l)
	}

	l.sweep = l.now().Add(window)

	return &l
}

// Window returns the length of a client's rate limit window.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Max returns the number of requests admitted per client in each window.
func (l *Limiter) Max() int {
	return l.max
}

// Admit records a request from identity and reports whether it is within the limit.
func (l *Limiter) Admit(identity string) Decision {
	now := l.now()

	l.guard.Lock()
	defer l.guard.Unlock()

	if !now.Before(l.sweep) {
		l.expire(now)
	}

	c, ok := l.clients[identity]
	if !ok || !now.Before(c.start.Add(l.window)) {
		c = &client{start: now}
		l.clients[identity] = c
	}

	c.count++

	remaining := l.max - c.count
	if remaining < 0 {
		remaining = 0
	}

	d := Decision{
		Allowed:   c.count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		Reset:     c.start.Add(l.window),
	}

	if !d.Allowed {
		d.RetryAfter = d.Reset.Sub(now)
	}

	return d
}

func (l *Limiter) expire(now time.Time) {
	for k, c := range l.clients {
		if !now.Before(c.start.Add(l.window)) {
			delete(l.clients, k)
		}
	}

	l.sweep = now.Add(l.window)
}
