// Package stopwatch measures the wall-clock duration of a command invocation.
package stopwatch

import (
	"fmt"
	"sync"
	"time"
)

// Clock returns the current time
type Clock func() time.Time

// Stopwatch measures the time between Start and Stop
type Stopwatch struct {
	mu      sync.Mutex
	now     Clock
	start   time.Time
	end     time.Time
	stopped bool
}

// Start creates and starts a stopwatch using the system clock
func Start() *Stopwatch {
	return StartWithClock(time.Now)
}

// StartWithClock creates and starts a stopwatch using clock
func StartWithClock(clock Clock) *Stopwatch {
	if clock == nil {
		clock = time.Now
	}
	return &Stopwatch{
		now:   clock,
		start: clock(),
	}
}

// Stop freezes the end time. Calling Stop again has no effect.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.end = s.now()
	s.stopped = true
}

// IsRunning returns true until Stop is called
func (s *Stopwatch) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}

// Elapsed returns the measured duration, or the time elapsed so far
// while the stopwatch is running
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := s.end
	if !s.stopped {
		end = s.now()
	}
	if d := end.Sub(s.start); d > 0 {
		return d
	}
	return 0
}

// Duration returns Elapsed in seconds
func (s *Stopwatch) Duration() float64 {
	return s.Elapsed().Seconds()
}

// StartTime returns the start time in milliseconds since the epoch
func (s *Stopwatch) StartTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start.UnixMilli()
}

// EndTime returns the stop time in milliseconds since the epoch,
// or the current time while the stopwatch is running
func (s *Stopwatch) EndTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		return s.now().UnixMilli()
	}
	return s.end.UnixMilli()
}

// String renders the duration as seconds with two decimals, e.g. "1.25s"
func (s *Stopwatch) String() string {
	return fmt.Sprintf("%.2fs", s.Duration())
}
