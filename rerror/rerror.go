// Package rerror implements the engine's error taxonomy on top of
// google.golang.org/grpc/codes and google.golang.org/grpc/status: every
// error the engine returns carries one of a small closed set of codes, so
// callers can branch on "how should I react" without string matching.
package rerror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ResourceExhausted reports that an operation ran out of a bounded
// resource it needs to proceed (e.g. a Writer's caller-imposed size
// limit), distinct from a hard I/O failure: the caller may legitimately
// retry after freeing capacity.
func ResourceExhausted(format string, args ...any) error {
	return status.Errorf(codes.ResourceExhausted, format, args...)
}

// IO reports a failure from an underlying transport or storage layer
// (a file, a socket, a pipe) that the engine itself cannot interpret
// further.
func IO(err error) error {
	if err == nil {
		return nil
	}
	return status.Errorf(codes.Unavailable, "io: %v", err)
}

// InvalidArgument reports a caller error: a malformed request the engine
// will never succeed at regardless of retries.
func InvalidArgument(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// OutOfRange reports a position or length argument outside the bounds the
// operation can address. Chain.RemovePrefix/RemoveSuffix panic when n
// exceeds Size, and the readers' Seek returns false past the end; none of
// them returns this error.
func OutOfRange(format string, args ...any) error {
	return status.Errorf(codes.OutOfRange, format, args...)
}

// Internal reports a violated invariant: a bug in the engine itself, not
// a caller or environment failure.
func Internal(format string, args ...any) error {
	return status.Errorf(codes.Internal, format, args...)
}

// Code extracts the taxonomy code from err, or codes.Unknown if a non-nil
// err carries no status. A nil err maps to codes.OK.
func Code(err error) codes.Code {
	return status.Code(err)
}

// Is reports whether err (or any error it wraps) was constructed with the
// given taxonomy code.
func Is(err error, code codes.Code) bool {
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		return se.GRPCStatus().Code() == code
	}
	return status.Code(err) == code
}

// Wrap annotates err with a message while preserving its taxonomy code,
// the way fmt.Errorf("...: %w", err) preserves errors.Is/As chains
// elsewhere in this codebase.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	code := status.Code(err)
	msg := fmt.Sprintf(format, args...)
	return status.Errorf(code, "%s: %v", msg, err)
}
