package timer

import (
	"sync/atomic"
	"time"
)

// Resolution is how often the clock is refreshed. Deadlines of the server are measured in
// seconds, so being late by a tenth of a second at most is fine.
const Resolution = 100 * time.Millisecond

// precision is the shortest duration for which the clock is used. Shorter ones are served
// by time.Now, as the error of Resolution would take a noticeable share of them.
const precision = 10 * Resolution

var millis = new(atomic.Int64)

func init() {
	// store the time before the goroutine is started, otherwise early callers may observe
	// the zero time
	millis.Store(time.Now().UnixMilli())

	go func() {
		for {
			time.Sleep(Resolution)
			millis.Store(time.Now().UnixMilli())
		}
	}()
}

// Now returns the current time, lagging behind the real one by Resolution at most.
func Now() time.Time {
	return time.UnixMilli(millis.Load())
}

// Deadline returns the moment d from now. Durations shorter than the clock can serve
// precisely enough are counted from time.Now instead.
func Deadline(d time.Duration) time.Time {
	if d < precision {
		return time.Now().Add(d)
	}

	return Now().Add(d)
}
