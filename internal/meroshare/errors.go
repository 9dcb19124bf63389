package meroshare

import (
	"errors"
	"fmt"
)

// RemoteError reports a transport failure or a non-2xx response from the
// portal. It is caught per account during a batch and never aborts it.
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Body)
}

// ParseError reports a malformed payload from the portal.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ErrFormNotFound is returned when an application form cannot be located for
// an account. Callers treat it as "status unknown", not fatal.
var ErrFormNotFound = errors.New("application form not found")
