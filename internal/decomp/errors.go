package decomp

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by this package wraps exactly one
// of these, so callers can classify with errors.Is.
var (
	ErrInputNotFound   = errors.New("input not found")
	ErrToolUnavailable = errors.New("decompiler tool unavailable")
	ErrToolInvocation  = errors.New("decompiler invocation failed")
	ErrOutputConflict  = errors.New("output conflict")
	ErrIO              = errors.New("i/o failure")
)

// OpError carries the operation, the path it failed on and the error kind.
type OpError struct {
	Kind error
	Op   string
	Path string
	Msg  string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	s := e.Kind.Error()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Path != "" {
		s += ": " + e.Path
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *OpError) Is(target error) bool { return target == e.Kind }

func (e *OpError) Unwrap() error { return e.Err }

func opErrorf(kind error, op, path, format string, args ...any) error {
	return &OpError{Kind: kind, Op: op, Path: path, Msg: fmt.Sprintf(format, args...)}
}

func wrapIO(op, path string, err error) error {
	return &OpError{Kind: ErrIO, Op: op, Path: path, Err: err}
}
