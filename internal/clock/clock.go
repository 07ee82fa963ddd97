package clock

import (
	"sync"
	"time"

	"toolshare-backend/internal/domain"
)

// Clock supplies the current instant. Due-date math only ever looks at the
// calendar day, so the location of the returned time matters.
type Clock interface {
	Now() time.Time
}

type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock that reports time in loc (UTC when nil).
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc}
}

func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Fixed is a manually driven clock for tests and one-off jobs.
type Fixed struct {
	mu sync.RWMutex
	t  time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

// FixedOn returns a clock stopped at noon UTC on the given day.
func FixedOn(d domain.Date) *Fixed {
	return NewFixed(d.Time().Add(12 * time.Hour))
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.t
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

// AdvanceDays moves the clock forward by n calendar days.
func (f *Fixed) AdvanceDays(n int) {
	f.mu.Lock()
	f.t = f.t.AddDate(0, 0, n)
	f.mu.Unlock()
}

// Today returns the calendar day c currently observes.
func Today(c Clock) domain.Date {
	return domain.DateOf(c.Now())
}
