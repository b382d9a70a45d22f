package kitchen

import "time"

// Scheduler defers board work such as mark expiry and card removal. The
// real implementation rides time.AfterFunc; tests swap in a manual one.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Cancel
}

// Cancel stops a scheduled callback if it has not fired yet.
type Cancel func()

type timerScheduler struct{}

// NewScheduler returns the wall-clock scheduler.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(d time.Duration, fn func()) Cancel {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}
