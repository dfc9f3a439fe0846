// Package retry runs fallible actions with bounded attempts and
// exponential backoff. It is used around outbound network calls such
// as publishing a post, where a transient outage should degrade to
// "no post this cycle" instead of crashing the job loop.
package retry

import (
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for callers that have no configured retry policy.
const (
	DefaultMaxAttempts   = 3
	DefaultBackoffFactor = 2.0
)

// Do runs action up to maxAttempts times. Each failure is logged with
// its attempt number; while attempts remain, the caller sleeps
// backoffFactor^(attempt-1) seconds before retrying. It returns true
// on the first attempt that succeeds and false once all attempts are
// exhausted. All error kinds are retried uniformly.
func Do(logger zerolog.Logger, action func() error, maxAttempts int, backoffFactor float64) bool {
	return doWithSleep(logger, action, maxAttempts, backoffFactor, time.Sleep)
}

func doWithSleep(logger zerolog.Logger, action func() error, maxAttempts int, backoffFactor float64, sleep func(time.Duration)) bool {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := action()
		if err == nil {
			return true
		}

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Msg("attempt failed")

		if attempt < maxAttempts {
			sleep(Backoff(backoffFactor, attempt))
		}
	}
	return false
}

// Backoff returns the delay before the attempt following the given
// failed attempt number (1-based): backoffFactor^(attempt-1) seconds.
func Backoff(backoffFactor float64, attempt int) time.Duration {
	return time.Duration(math.Pow(backoffFactor, float64(attempt-1)) * float64(time.Second))
}
