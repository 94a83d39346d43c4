package generate

import (
	"errors"
	"fmt"

	"vttgen/internal/transcribe"
)

// Kind classifies a generation failure.
type Kind int

const (
	// KindUsage covers invalid input, such as a missing input file.
	KindUsage Kind = iota + 1
	// KindDependency means the transcription engine could not be loaded.
	KindDependency
	// KindRuntime covers failures while transcribing or writing output.
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindDependency:
		return "dependency"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Error is a classified generation failure. Its message carries the
// user-facing prefix for its kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	switch e.Kind {
	case KindDependency:
		return "Failed to load transcription engine. Install dependency first. Error: " + e.Err.Error()
	case KindRuntime:
		return "Subtitle generation failed: " + e.Err.Error()
	default:
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExitCode maps err to a process exit status: 0 for nil, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// KindOf reports the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return 0
}

func usageErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindUsage, Err: fmt.Errorf(format, args...)}
}

func dependencyError(err error) *Error {
	return &Error{Kind: KindDependency, Err: err}
}

func runtimeError(err error) *Error {
	return &Error{Kind: KindRuntime, Err: err}
}

// engineError classifies a failure reported by the engine after it loaded.
func engineError(err error) *Error {
	if errors.Is(err, transcribe.ErrUnavailable) {
		return dependencyError(err)
	}
	return runtimeError(err)
}
