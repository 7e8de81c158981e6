package clock

import "time"

// Clocker reports the current instant.
type Clocker interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func New() *System {
	return &System{}
}

func (*System) Now() time.Time {
	return time.Now().UTC()
}
