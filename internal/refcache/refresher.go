package refcache

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// periodicRetryAttempts bounds how many times one periodic tick retries a
// refresh that failed on transient I/O before giving up until the next tick.
const periodicRetryAttempts = 3

// Start begins the background refresh loop. A tick that fires before
// RefreshPeriod has elapsed since the last successful refresh (periodic or
// on-demand) is a no-op. With RefreshPeriod <= 0 Start does nothing.
func (c *Cache) Start() {
	if c.cfg.RefreshPeriod <= 0 {
		return
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.mu.Unlock()

	go c.run()
}

// Stop stops the background refresh loop and waits for it to complete.
func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	close(c.stopCh)
	c.mu.Unlock()

	<-c.doneCh

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// run is the main refresh loop.
func (c *Cache) run() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.cfg.RefreshPeriod)
	defer ticker.Stop()

	// Populate the cache immediately on start.
	ctx := context.Background()
	c.periodicRefresh(ctx)

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			if time.Since(c.LastRefresh()) < c.cfg.RefreshPeriod {
				// An on-demand refresh already ran inside this period.
				continue
			}
			c.periodicRefresh(ctx)
		}
	}
}

// periodicRefresh runs one refresh on the background path. Transient I/O
// failures are retried a few times, then logged and swallowed: the previous
// generation stays live and a filesystem hiccup must not kill the loop.
func (c *Cache) periodicRefresh(ctx context.Context) {
	err := retry.Do(
		func() error { return c.TriggerRefresh(ctx) },
		retry.Attempts(periodicRetryAttempts),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.logger.WithError(err).Warn("periodic cache refresh failed, keeping previous generation")
	}
}
