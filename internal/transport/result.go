package transport

import (
	pkgerrors "github.com/angelmondragon/packfinderz-client/pkg/errors"
)

// Result is the envelope every remote operation in the sync layer
// returns. LocalFallback marks a success synthesized client-side after a
// recoverable server failure; the user-visible flow treats it as real.
type Result[T any] struct {
	Success       bool   `json:"success"`
	Data          *T     `json:"data"`
	Error         string `json:"error,omitempty"`
	LocalFallback bool   `json:"isLocalFallback"`
}

// Ok wraps data in a successful result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data}
}

// OkFallback wraps data in a successful result synthesized locally.
func OkFallback[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data, LocalFallback: true}
}

// Fail converts a terminal error into a failed result carrying the
// human-readable message for the UI.
func Fail[T any](err error) Result[T] {
	if err == nil {
		return Result[T]{Success: false}
	}
	if typed := pkgerrors.As(err); typed != nil {
		msg := typed.Message()
		if msg == "" {
			msg = pkgerrors.MetadataFor(typed.Code()).PublicMessage
		}
		return Result[T]{Success: false, Error: msg}
	}
	return Result[T]{Success: false, Error: err.Error()}
}
