package ticker

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable reports that the upstream site returned its outage
// banner. Fatal for the call; retrying later is the only option.
var ErrServiceUnavailable = errors.New("upstream service is temporarily unavailable")

// ErrNoData is the default reason attached to a fetch that returned an
// empty or unusable result set.
var ErrNoData = errors.New("no data found for this date range, symbol may be delisted")

// ValidationError reports a symbol the client refuses to query.
type ValidationError struct {
	Symbol string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid symbol %q: %s", e.Symbol, e.Reason)
}

// TransportError wraps a failed HTTP exchange. The client makes exactly one
// attempt per fetch; retries belong to the caller.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExtractionError reports that a page did not carry the embedded data blob
// in the expected shape. Callers treat it as "no data" for that section.
type ExtractionError struct {
	URL    string
	Reason string
}

func (e *ExtractionError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("payload extraction failed: %s", e.Reason)
	}
	return fmt.Sprintf("payload extraction failed for %s: %s", e.URL, e.Reason)
}

// FieldError reports that one field or table failed to normalize. It only
// ever degrades its own section, never the whole request.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("normalize %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
