package graph

import "time"

// Clock supplies the timestamps stamped onto rows and audit entries.
// Injected so tests can advance time explicitly; production uses UTCClock.
// The audit chain is ordered by the store's sequence, never by these
// timestamps - the clock only feeds created_at/updated_at comparisons.
type Clock interface {
	Now() time.Time
}

// UTCClock is the production clock: wall time in UTC.
type UTCClock struct{}

// Now returns the current wall time in UTC.
func (UTCClock) Now() time.Time {
	return time.Now().UTC()
}
