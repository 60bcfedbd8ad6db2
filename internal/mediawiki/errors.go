package mediawiki

import (
	"errors"
	"fmt"
)

// ErrRateLimited means the API pushed back; retrying later may work.
var ErrRateLimited = errors.New("wiki api: rate limited")

// ErrPageMissing means the requested title does not exist; retrying is
// pointless until the page is created.
var ErrPageMissing = errors.New("wiki api: page missing")

// ParseError means the API answered but the payload did not match the
// expected shape.
type ParseError struct {
	Page  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wiki api: bad payload for %q: %v", e.Page, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// APIError is a generic API-reported failure with the upstream code.
type APIError struct {
	Code string
	Info string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wiki api: %s: %s", e.Code, e.Info)
}
