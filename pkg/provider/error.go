package provider

import (
	"errors"
	"fmt"
)

// Error wraps a provider failure with its origin kind.
type Error struct {
	Kind  Kind
	Empty bool
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Empty {
		return fmt.Sprintf("%s returned an empty response", e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}
	return fmt.Sprintf("%s: provider error", e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsEmptyResponse reports whether err marks a request that succeeded at the
// transport level but carried no text.
func IsEmptyResponse(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Empty
}
