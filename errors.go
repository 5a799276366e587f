package lorebase

import (
	"fmt"
	"time"
)

// ErrHTTP is returned by embedding providers that call remote APIs.
// RetryAfter carries the parsed Retry-After header when the server sent one.
type ErrHTTP struct {
	Status     int
	Body       string
	RetryAfter time.Duration
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}
