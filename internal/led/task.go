package led

import (
	"context"
	"time"
)

const minHalfPeriod = time.Millisecond

// toggleTask is a running blink loop. stop cancels it and waits for exit.
type toggleTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (t *toggleTask) stop() {
	t.cancel()
	<-t.done
}

// halfPeriod returns how long the pin holds one level at hz.
func halfPeriod(hz uint32) time.Duration {
	if hz == 0 {
		hz = 1
	}
	d := time.Duration(1000/hz) * time.Millisecond
	if d < minHalfPeriod {
		return minHalfPeriod
	}
	return d
}

// startTask launches the toggle loop for the controller's pin.
// Called with c.mu held.
func (c *Controller) startTask() *toggleTask {
	ctx, cancel := context.WithCancel(context.Background())
	t := &toggleTask{cancel: cancel, done: make(chan struct{})}

	for _, o := range c.observers {
		o.TaskStarted()
	}
	go c.toggleLoop(ctx, t.done)
	return t
}

// toggleLoop drives the pin high and low until ctx is cancelled. The
// frequency is re-read every half period so changes apply without restart.
// The loop never returns with the pin high.
func (c *Controller) toggleLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	defer func() {
		for _, o := range c.observers {
			o.TaskExited()
		}
	}()

	for ctx.Err() == nil {
		c.drive(true)
		if !sleep(ctx, halfPeriod(c.liveFreq.Load())) {
			c.drive(false)
			return
		}

		c.drive(false)
		if !sleep(ctx, halfPeriod(c.liveFreq.Load())) {
			return
		}
	}
}

func (c *Controller) drive(high bool) {
	if high {
		c.reg.SetHigh(c.pin)
	} else {
		c.reg.SetLow(c.pin)
	}
	c.level.Store(high)
	for _, o := range c.observers {
		o.Toggled(high)
	}
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
