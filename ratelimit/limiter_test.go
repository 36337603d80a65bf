package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	sync.Mutex
	t time.Time
}

func (c *clock) Now() time.Time {
	c.Lock()
	defer c.Unlock()

	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.Lock()
	defer c.Unlock()

	c.t = c.t.Add(d)
}

func newClock() *clock {
	return &clock{t: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

func tracked(l *Limiter) int {
	l.guard.Lock()
	defer l.guard.Unlock()

	return len(l.clients)
}

func TestAdmit(t *testing.T) {
	c := newClock()
	l := NewLimiter(15*time.Minute, 100, WithClock(c.Now))

	for i := 1; i <= 100; i++ {
		d := l.Admit("192.0.2.1")
		require.True(t, d.Allowed, "request %d should be admitted", i)
		assert.Equal(t, 100-i, d.Remaining)
		assert.Equal(t, 100, d.Limit)
	}

	d := l.Admit("192.0.2.1")
	assert.False(t, d.Allowed, "request 101 should be rejected")
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, c.Now().Add(15*time.Minute), d.Reset)
	assert.Equal(t, 15*time.Minute, d.RetryAfter)
}

func TestAdmitAfterWindowExpires(t *testing.T) {
	c := newClock()
	l := NewLimiter(15*time.Minute, 100, WithClock(c.Now))

	for i := 0; i < 101; i++ {
		l.Admit("192.0.2.1")
	}

	c.Advance(14*time.Minute + 59*time.Second)
	assert.False(t, l.Admit("192.0.2.1").Allowed, "window has not expired")

	c.Advance(time.Second)
	d := l.Admit("192.0.2.1")

	assert.True(t, d.Allowed, "window has expired")
	assert.Equal(t, 99, d.Remaining)
	assert.Equal(t, c.Now().Add(15*time.Minute), d.Reset)
}

func TestAdmitIsPerIdentity(t *testing.T) {
	c := newClock()
	l := NewLimiter(time.Minute, 2, WithClock(c.Now))

	assert.True(t, l.Admit("a").Allowed)
	assert.True(t, l.Admit("a").Allowed)
	assert.False(t, l.Admit("a").Allowed)

	assert.True(t, l.Admit("b").Allowed)
	assert.Equal(t, 2, tracked(l))
}

func TestWindowStartsWithFirstRequest(t *testing.T) {
	c := newClock()
	l := NewLimiter(time.Minute, 2, WithClock(c.Now))

	l.Admit("a")
	c.Advance(30 * time.Second)
	l.Admit("a")

	d := l.Admit("a")
	assert.False(t, d.Allowed)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	c.Advance(30 * time.Second)
	assert.True(t, l.Admit("a").Allowed)
}

func TestLimits(t *testing.T) {
	l := NewLimiter(15*time.Minute, 100)

	assert.Equal(t, 15*time.Minute, l.Window())
	assert.Equal(t, 100, l.Max())
}

func TestExpiredClientsAreSwept(t *testing.T) {
	c := newClock()
	l := NewLimiter(time.Minute, 10, WithClock(c.Now))

	for i := 0; i < 50; i++ {
		l.Admit(fmt.Sprintf("198.51.100.%d", i))
	}

	require.Equal(t, 50, tracked(l))

	c.Advance(2 * time.Minute)
	l.Admit("203.0.113.1")

	assert.Equal(t, 1, tracked(l))
}

func TestAdmitConcurrently(t *testing.T) {
	l := NewLimiter(time.Hour, 100)

	var wg sync.WaitGroup
	var guard sync.Mutex
	admitted := 0

	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("192.0.2.1").Allowed {
				guard.Lock()
				admitted++
				guard.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 100, admitted)
}
