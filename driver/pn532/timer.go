package pn532

import "time"

// Timer is a countdown timer the blocking transaction engine consults while
// polling transport readiness. It is deliberately narrow -- start a
// countdown, then repeatedly ask whether it has elapsed -- so that an
// embedded target can implement it against a hardware timer/counter; only
// time.Duration is needed from the standard library's time package.
type Timer interface {
	// Start begins (or restarts) a countdown of duration d.
	Start(d time.Duration)
	// Elapsed reports whether the countdown started by Start has expired.
	Elapsed() bool
}

// WallClockTimer implements Timer using time.Now, suitable for a hosted OS.
// Embedded targets without a monotonic clock supply their own Timer.
type WallClockTimer struct {
	deadline time.Time
}

func (t *WallClockTimer) Start(d time.Duration) {
	t.deadline = time.Now().Add(d)
}

func (t *WallClockTimer) Elapsed() bool {
	return !time.Now().Before(t.deadline)
}
