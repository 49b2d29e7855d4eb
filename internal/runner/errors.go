package runner

import (
	"errors"
	"fmt"
)

// ErrNoRequester is returned by New when Options.NewRequester is nil.
var ErrNoRequester = errors.New("runner: NewRequester is required")

// FatalError marks an exchange error that must end the run instead of being
// counted as a failed exchange.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err so that a worker stops on it. Fatal(nil) returns nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
