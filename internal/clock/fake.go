package clock

import "time"

// FakeClock reports a fixed UTC instant so date-bucketed report math is
// reproducible. Not safe for concurrent use; tests own it.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(at time.Time) *FakeClock {
	return &FakeClock{now: at.UTC()}
}

func (c *FakeClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
