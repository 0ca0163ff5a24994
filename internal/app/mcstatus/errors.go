package mcstatus

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable is returned when an upstream API could not be
	// reached, timed out or answered with a non-2xx status code.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrInvalidResponseShape is returned when an upstream answered with data
	// that lacks the fields required to use it.
	ErrInvalidResponseShape = errors.New("invalid response shape")
	// ErrAllUpstreamsFailed matches every ResolutionError.
	ErrAllUpstreamsFailed = errors.New("no status available")
)

// ResolutionError is returned by Resolver.Status when no upstream delivered
// usable data and no cached status exists for the address.
type ResolutionError struct {
	Address string
	Cause   error
}

func (err *ResolutionError) Error() string {
	if err.Cause == nil {
		return fmt.Sprintf("%s for %q", ErrAllUpstreamsFailed, err.Address)
	}
	return fmt.Sprintf("%s for %q: %v", ErrAllUpstreamsFailed, err.Address, err.Cause)
}

func (err *ResolutionError) Unwrap() error {
	return err.Cause
}

func (err *ResolutionError) Is(target error) bool {
	return target == ErrAllUpstreamsFailed
}

var ErrInvalidAddress = errors.New("invalid server address")
