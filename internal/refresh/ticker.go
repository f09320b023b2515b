package refresh

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// Ticker runs a read-only callback on a fixed interval, e.g. a status
// readout. Start and Stop may be called in any order and any number of times.
type Ticker struct {
	interval time.Duration
	fn       func()

	mu   sync.Mutex
	cron *gron.Cron
}

// New returns a stopped Ticker. gron schedules in whole seconds, so shorter
// intervals are raised to one second.
func New(interval time.Duration, fn func()) *Ticker {
	if interval < time.Second {
		interval = time.Second
	}
	return &Ticker{interval: interval, fn: fn}
}

// Start schedules fn. Starting a running Ticker does nothing.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cron != nil {
		return
	}
	t.cron = gron.New()
	t.cron.AddFunc(gron.Every(t.interval), t.fn)
	t.cron.Start()
}

// Stop cancels the schedule. It is safe on a stopped or never started Ticker.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cron == nil {
		return
	}
	t.cron.Stop()
	t.cron = nil
}
