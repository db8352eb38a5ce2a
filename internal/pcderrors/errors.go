// Package pcderrors defines the sentinel error kinds surfaced by the LOD
// pipeline, per the error handling design in SPEC_FULL.md §8.
package pcderrors

import "errors"

// Sentinel error kinds. Callers should compare against these with errors.Is;
// call sites wrap them with github.com/pkg/errors to add context without
// losing the sentinel.
var (
	// ErrInvalidPointFormat is returned by the point parser for a line that
	// does not match one of the accepted token arities. Recovered locally by
	// the ingester: the offending line is skipped.
	ErrInvalidPointFormat = errors.New("pcdlod: invalid point format")

	// ErrInputNotFound is fatal at startup: the input file does not exist.
	ErrInputNotFound = errors.New("pcdlod: input file not found")

	// ErrOutputNotADirectory is fatal at startup: the output path exists but
	// is not a directory, or cannot be created as one.
	ErrOutputNotADirectory = errors.New("pcdlod: output path is not a directory")

	// ErrIngesterFailure is fatal: the external format converter failed.
	ErrIngesterFailure = errors.New("pcdlod: ingester failed")

	// ErrCallbackFailure wraps the first error returned by a per-unit or
	// per-level callback; the pipeline halts immediately after it occurs.
	ErrCallbackFailure = errors.New("pcdlod: callback failed")
)
