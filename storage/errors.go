package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrSinkUnavailable = errors.New("sink unavailable")
	ErrUploadAborted   = errors.New("upload aborted")
	ErrSinkClosed      = errors.New("sink already closed")
)

// SinkError reports a destination that could not be opened. It matches
// ErrSinkUnavailable and unwraps to the underlying cause.
type SinkError struct {
	Name string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSinkUnavailable, e.Name, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

func (e *SinkError) Is(target error) bool {
	return target == ErrSinkUnavailable
}
