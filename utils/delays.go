package utils

import (
	"time"
)

// RetryDelay decides how long to pause between attempts of a named task.
type RetryDelay interface {
	Wait(task string, attempt int)
}

// ConstantDelay waits the same number of seconds between every attempt.
type ConstantDelay struct {
	// Period in seconds
	Period int
}

func (d ConstantDelay) Wait(task string, attempt int) {
	time.Sleep(time.Duration(d.Period) * time.Second)
}

// ExponentialBackoff waits Unit * 2^attempt. The zero value counts in
// seconds; tests inject a smaller Unit to keep runs fast.
type ExponentialBackoff struct {
	Unit time.Duration
}

func (d ExponentialBackoff) Wait(task string, attempt int) {
	unit := d.Unit
	if unit <= 0 {
		unit = time.Second
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}
	time.Sleep(unit * time.Duration(int64(1)<<uint(attempt)))
}

// NoDelay skips waiting entirely.
type NoDelay struct{}

func (NoDelay) Wait(task string, attempt int) {}
