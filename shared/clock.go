package shared

import (
	"sync"
	"time"
)

// Clock abstracts time so the cache and the refresh job can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of *time.Ticker the refresh job needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }

// ManualClock only moves when Advance is called. Tickers created from it
// fire once per elapsed period during Advance.
type ManualClock struct {
	mutex   sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock creates a manual clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *ManualClock) NewTicker(d time.Duration) Ticker {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	t := &manualTicker{
		period: d,
		next:   c.now.Add(d),
		ch:     make(chan time.Time, 16),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward and delivers any ticks that came due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mutex.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := append([]*manualTicker(nil), c.tickers...)
	c.mutex.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

type manualTicker struct {
	mutex   sync.Mutex
	period  time.Duration
	next    time.Time
	stopped bool
	ch      chan time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.stopped = true
}

func (t *manualTicker) fire(now time.Time) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for !t.stopped && !t.next.After(now) {
		select {
		case t.ch <- t.next:
		default:
			// slow receiver; drop like time.Ticker does
		}
		t.next = t.next.Add(t.period)
	}
}
