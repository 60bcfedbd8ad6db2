package fetch

import (
	"errors"
	"fmt"
)

// ErrRateLimited marks responses the source used to push back (HTTP 429
// or 403). It feeds the gate's backoff rather than failing the fetch
// outright.
var ErrRateLimited = errors.New("rate limited by source")

// ErrNetwork marks transport-level failures (connect, timeout).
var ErrNetwork = errors.New("network error")

// ExhaustedError is returned when the retry budget for one logical
// fetch runs out. It is a terminal outcome for the attempt, never a
// process-level failure.
type ExhaustedError struct {
	Source   string
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("fetch %s: retries exhausted after %d attempts: %v", e.Source, e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// IsBlocked reports whether the fetch died on anti-bot pushback, which
// is the signal to try the structured API fallback instead.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
