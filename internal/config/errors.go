package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, one per class of the error taxonomy.
var (
	// ErrIO indicates a configuration file is missing or unreadable.
	ErrIO = errors.New("config io error")

	// ErrParse indicates a malformed configuration document.
	ErrParse = errors.New("config parse error")

	// ErrCycle indicates an inherit_from chain that refers back to itself.
	ErrCycle = errors.New("inherit_from cycle")

	// ErrPattern indicates a glob that matched nothing or failed to compile.
	ErrPattern = errors.New("invalid pattern")

	// ErrMerge indicates documents could not be merged.
	ErrMerge = errors.New("config merge error")

	// ErrHandler indicates a rule rejected one of its parameters.
	ErrHandler = errors.New("rule parameter error")
)

// IOError reports a failure to read a configuration file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read config %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is matches ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// ParseError reports a malformed configuration document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// CycleError reports an inherit_from cycle. Chain lists the canonical paths
// from the first file to the repeated one.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "inherit_from cycle: " + strings.Join(e.Chain, " -> ")
}

// Is matches ErrCycle.
func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// PatternError reports a glob that expanded to nothing or did not compile.
type PatternError struct {
	Pattern string
	Reason  string
	Err     error
}

func (e *PatternError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pattern %q: %s: %v", e.Pattern, e.Reason, e.Err)
	}
	return fmt.Sprintf("pattern %q: %s", e.Pattern, e.Reason)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Is matches ErrPattern.
func (e *PatternError) Is(target error) bool { return target == ErrPattern }

// MergeError reports a failure while merging documents.
type MergeError struct {
	Key string
	Err error
}

func (e *MergeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("merge failed: %v", e.Err)
	}
	return fmt.Sprintf("merge failed at %s: %v", e.Key, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// Is matches ErrMerge.
func (e *MergeError) Is(target error) bool { return target == ErrMerge }

// HandlerError reports a rule parameter rejected by the rule's handler.
type HandlerError struct {
	Rule string
	Key  string
	Err  error
}

func (e *HandlerError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Rule, e.Err)
	}
	return fmt.Sprintf("%s: invalid %s value: %v", e.Rule, e.Key, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Is matches ErrHandler.
func (e *HandlerError) Is(target error) bool { return target == ErrHandler }

// IsFatal reports whether err aborts a discovery, compile or warm operation.
// Pattern-compile failures and handler errors are logged where they occur and
// never reach a caller; a PatternError that does propagate comes from an
// inherit_from glob that matched nothing.
func IsFatal(err error) bool {
	return errors.Is(err, ErrIO) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrCycle) ||
		errors.Is(err, ErrMerge) ||
		errors.Is(err, ErrPattern)
}
