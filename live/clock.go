package live

import (
	"time"
)

// Clock publishes a tick so views can refresh elapsed-time text. It carries
// no data change.
type Clock struct {
	Notifier Notifier
	Interval time.Duration
	StopChan chan struct{}
}

func NewClock(n Notifier, interval time.Duration) *Clock {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Clock{
		Notifier: n,
		Interval: interval,
		StopChan: make(chan struct{}),
	}
}

func (c *Clock) Start() {
	go func() {
		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				c.Notifier.Publish(Message{Event: EventTick, Data: now.UTC()})
			case <-c.StopChan:
				return
			}
		}
	}()
}

func (c *Clock) Stop() {
	close(c.StopChan)
}
