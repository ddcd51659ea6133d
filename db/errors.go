package db

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCity is returned for cities without a configured source.
	ErrUnknownCity = errors.New("unknown city")
	// ErrSourceUnavailable is returned when a source is missing, unreadable
	// or corrupt.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedTimestamp is matched by *MalformedTimestampError.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
)

// MalformedTimestampError reports a start time that could not be parsed.
type MalformedTimestampError struct {
	Source string
	// Row is the 1-based data row, not counting the header.
	Row   int
	Value string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("%s: row %d: malformed timestamp %q", e.Source, e.Row, e.Value)
}

func (e *MalformedTimestampError) Unwrap() error {
	return ErrMalformedTimestamp
}

func unavailable(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
}
