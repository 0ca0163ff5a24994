package mcstatus

import (
	"context"
	"errors"
	"fmt"

	"github.com/haveachin/mcstatus/internal/pkg/upstream"
)

// PrimaryFetcher queries the primary status API.
type PrimaryFetcher interface {
	FetchPrimary(ctx context.Context, addr string) (upstream.PrimaryStatus, error)
}

// LegacyFetcher queries the legacy status API.
type LegacyFetcher interface {
	FetchLegacy(ctx context.Context, addr string) (upstream.LegacyStatus, error)
}

// State is the outcome of a single upstream call.
type State byte

const (
	// StateNone marks an upstream that was not queried.
	StateNone State = iota
	StateOk
	StateUnavailable
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateOk:
		return "ok"
	case StateUnavailable:
		return "unavailable"
	case StateInvalid:
		return "invalid"
	}
	return "unknown"
}

// Result is the tagged result of an upstream call.
// Data is only meaningful if State is StateOk; Err is set otherwise.
type Result[T any] struct {
	State State
	Data  T
	Err   error
}

func (r Result[T]) Ok() bool {
	return r.State == StateOk
}

func okResult[T any](data T) Result[T] {
	return Result[T]{State: StateOk, Data: data}
}

func failedResult[T any](err error) Result[T] {
	switch {
	case errors.Is(err, ErrInvalidResponseShape):
		return Result[T]{State: StateInvalid, Err: err}
	case errors.Is(err, upstream.ErrMalformedResponse):
		return Result[T]{State: StateInvalid, Err: fmt.Errorf("%w: %v", ErrInvalidResponseShape, err)}
	}
	return Result[T]{State: StateUnavailable, Err: fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)}
}

func fetchPrimary(ctx context.Context, f PrimaryFetcher, addr string) Result[upstream.PrimaryStatus] {
	status, err := f.FetchPrimary(ctx, addr)
	if err != nil {
		return failedResult[upstream.PrimaryStatus](err)
	}

	if err := validatePrimary(status); err != nil {
		return failedResult[upstream.PrimaryStatus](err)
	}

	return okResult(status)
}

func fetchLegacy(ctx context.Context, f LegacyFetcher, addr string) Result[upstream.LegacyStatus] {
	status, err := f.FetchLegacy(ctx, addr)
	if err != nil {
		return failedResult[upstream.LegacyStatus](err)
	}
	return okResult(status)
}

// validatePrimary checks that the primary response reports a definite
// online state.
func validatePrimary(s upstream.PrimaryStatus) error {
	if s.Code != 200 {
		return fmt.Errorf("%w: code %d", ErrInvalidResponseShape, s.Code)
	}

	if s.Online == nil {
		return fmt.Errorf("%w: online state missing", ErrInvalidResponseShape)
	}

	return nil
}
