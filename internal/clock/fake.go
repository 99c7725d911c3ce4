package clock

import "time"

// FakeClock pins Now to a fixed instant so pipeline timestamps are
// deterministic under test. It only moves when told to.
type FakeClock struct {
	current time.Time
}

func NewFakeClock(at time.Time) *FakeClock {
	return &FakeClock{current: at.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.current
}

// Advance moves the clock forward, simulating time passing between runs.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
