// internal/config/errors.go
//
// Closed error taxonomy for configuration resolution.
//
// Every failure in the pipeline is one of the types below.  None are
// retried; callers surface the message and abort startup.  Kind maps an
// error onto a short label for metrics and structured logs.
package config

import (
	"errors"
	"fmt"
)

// ErrNotFound means no config/application.toml exists between the working
// directory and the filesystem root.
var ErrNotFound = errors.New("config file not found")

// IOError wraps a failure to open or read a located config file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// BadFilePathError reports a path without a usable parent directory.
type BadFilePathError struct {
	Path   string
	Reason string
}

func (e *BadFilePathError) Error() string {
	return fmt.Sprintf("bad file path %q: %s", e.Path, e.Reason)
}

// BadEnvError reports an unrecognized CONFIG_ENV value.
type BadEnvError struct {
	Raw string
}

func (e *BadEnvError) Error() string {
	return fmt.Sprintf("bad env %q: valid values are %s", e.Raw, validEnvironments)
}

// BadEntryError reports an entry that is well-typed but structurally
// invalid, e.g. a database section without an adapter.
type BadEntryError struct {
	Name string
	Path string
	Err  error
}

func (e *BadEntryError) Error() string {
	msg := fmt.Sprintf("bad entry %q in %s", e.Name, e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BadEntryError) Unwrap() error { return e.Err }

// BadTypeError reports a value whose shape differs from what the key
// requires.  Path is empty when the value did not come from a file.
type BadTypeError struct {
	Name     string
	Expected string
	Observed string
	Path     string
}

func (e *BadTypeError) Error() string {
	msg := fmt.Sprintf("bad type for %q: expected %s, found %s", e.Name, e.Expected, e.Observed)
	if e.Path != "" {
		msg += " in " + e.Path
	}
	return msg
}

// Location is a 1-based line and column inside the config source.
type Location struct {
	Line   int
	Column int
}

// ParseError reports TOML the decoder rejected, or a document whose top
// level is not a table.  Source holds the raw text for diagnostics.
type ParseError struct {
	Source   string
	Path     string
	Message  string
	Location *Location
}

func (e *ParseError) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("parse error in %s:%d:%d: %s",
			e.Path, e.Location.Line, e.Location.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Kind returns the taxonomy label of err, or "unknown" for errors that
// did not originate in this package.
func Kind(err error) string {
	var (
		ioErr    *IOError
		pathErr  *BadFilePathError
		envErr   *BadEnvError
		entryErr *BadEntryError
		typeErr  *BadTypeError
		parseErr *ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &ioErr):
		return "io"
	case errors.As(err, &pathErr):
		return "bad_file_path"
	case errors.As(err, &envErr):
		return "bad_env"
	case errors.As(err, &entryErr):
		return "bad_entry"
	case errors.As(err, &typeErr):
		return "bad_type"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "unknown"
	}
}
