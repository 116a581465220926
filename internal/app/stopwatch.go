package app

import "time"

// Stopwatch measures the time between frame starts.
type Stopwatch interface {
	// RunningTotal returns the time accumulated since the last reset.
	RunningTotal() time.Duration
	StopAndReset()
	Resume()
}

// clockStopwatch is a Stopwatch backed by a clock function.
type clockStopwatch struct {
	now     func() time.Time
	start   time.Time
	total   time.Duration
	running bool
}

// NewStopwatch returns a running stopwatch on the wall clock.
func NewStopwatch() Stopwatch {
	return newClockStopwatch(time.Now)
}

func newClockStopwatch(now func() time.Time) *clockStopwatch {
	return &clockStopwatch{now: now, start: now(), running: true}
}

func (s *clockStopwatch) RunningTotal() time.Duration {
	if !s.running {
		return s.total
	}
	return s.total + s.now().Sub(s.start)
}

func (s *clockStopwatch) StopAndReset() {
	s.running = false
	s.total = 0
}

func (s *clockStopwatch) Resume() {
	if s.running {
		return
	}
	s.start = s.now()
	s.running = true
}
