package session

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTickInterval is the countdown period of a running game
const DefaultTickInterval = time.Second

// Countdown is a recurring background tick bound to one session. It moves
// from inactive to active on Start and back on Stop; neither transition
// happens twice.
type Countdown struct {
	interval time.Duration
	onTick   func()

	stop      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	active    atomic.Bool
}

// NewCountdown creates an inactive countdown calling onTick every interval
func NewCountdown(interval time.Duration, onTick func()) *Countdown {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Countdown{
		interval: interval,
		onTick:   onTick,
		stop:     make(chan struct{}),
	}
}

// Start launches the ticking goroutine
func (c *Countdown) Start() {
	c.startOnce.Do(func() {
		select {
		case <-c.stop:
			return
		default:
		}
		c.active.Store(true)
		go c.run()
	})
}

// Stop cancels the countdown. It never blocks, so it is safe to call from
// inside onTick.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		c.active.Store(false)
		close(c.stop)
	})
}

// Active reports whether the countdown is ticking
func (c *Countdown) Active() bool {
	return c.active.Load()
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			// Stop wins over a tick that became ready at the same time
			select {
			case <-c.stop:
				return
			default:
			}
			c.onTick()
		}
	}
}
