// Package duerr defines the error taxonomy shared by every ducgo package.
//
// Four kinds cover everything the engine can fail at: Bootstrap (the image
// could not be created or opened), InvalidData (malformed file, truncated
// image, unknown element type, referenced-but-absent version), Db (the
// embedded relational engine reported an error), and Io (allocation or
// compression stream failure). All of it surfaces to the public facade
// as-is -- there is no retry layer.
package duerr

import "github.com/pkg/errors"

// Kind classifies an Error so callers can branch with errors.As without
// parsing message text.
type Kind int

const (
	// Bootstrap: schema could not be applied or an image could not be
	// initialized.
	Bootstrap Kind = iota
	// InvalidData: malformed file, truncated image, unknown element type,
	// missing required row, or a version reference with no backing row.
	InvalidData
	// Db: underlying relational engine error (constraint violation, cursor
	// failure).
	Db
	// Io: in-memory allocator failure or compression stream failure.
	Io
)

func (k Kind) String() string {
	switch k {
	case Bootstrap:
		return "Bootstrap"
	case InvalidData:
		return "InvalidData"
	case Db:
		return "Db"
	case Io:
		return "Io"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a Kind, preserving the cause's chain
// so errors.Is / errors.As / errors.Cause (pkg/errors) keep working.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Kind.String() + ": " + e.msg + ": " + e.err.Error()
	}
	return e.Kind.String() + ": " + e.msg
}

func (e *Error) Unwrap() error { return e.err }
func (e *Error) Cause() error  { return e.err }

// New builds a bare Error of the given kind with no wrapped cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, msg: msg}
}

// Wrap attaches kind and a message to an existing error, keeping it in the
// chain. Returns nil if err is nil, matching errors.Wrap's convention.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, msg: msg, err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, msg: errors.Errorf(format, args...).Error(), err: err}
}

// Is reports whether err (or any error in its chain) is a *Error of kind k.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == k {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
