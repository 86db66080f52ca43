package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidEvent is the sentinel wrapped by InvalidEventError.
var ErrInvalidEvent = errors.New("invalid communication event")

// InvalidEventError reports an event that cannot be ordered, such as one with no date.
type InvalidEventError struct {
	Index  int
	Reason string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("communication %d: %s", e.Index, e.Reason)
}

func (e *InvalidEventError) Unwrap() error {
	return ErrInvalidEvent
}
