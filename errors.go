// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"errors"
	"fmt"
	"log"
)

// Sentinel errors for the taxonomy of spec §7. Use errors.Is against these;
// concrete errors returned by the package wrap one of them with context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidInput covers unknown variable names, edges/handles from
	// different managers, non-Boolean values in a Boolean context, and
	// composition values of the wrong shape.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPrecondition covers find_or_add called with a bad level and
	// handles used after their manager was dropped.
	ErrPrecondition = errors.New("precondition violated")

	// ErrOutOfMemory is raised when allocation fails even after a GC pass.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrCancelled is returned when a kernel call observed its context's
	// cancellation.
	ErrCancelled = errors.New("cancelled")

	// errConsistency marks a violated core invariant; always fatal, never
	// recoverable. Seeing this means assert_consistent (or an equivalent
	// runtime check) found memory/invariant corruption.
	errConsistency = errors.New("bdd consistency violated")
)

// Consistency reports whether err is a (necessarily fatal) invariant
// violation, as opposed to a recoverable error.
func Consistency(err error) bool {
	return errors.Is(err, errConsistency)
}

func (m *Manager) seterror(err error) {
	if _DEBUG {
		log.Println(err)
	}
	m.err = err
}

func (m *Manager) errorf(sentinel error, format string, a ...interface{}) error {
	err := fmt.Errorf(format+": %w", append(a, sentinel)...)
	m.seterror(err)
	return err
}

// Err returns the last recoverable error observed by the manager, or nil.
// Kept for the teacher's "sticky error" ergonomics (errors.go's
// seterror/Error()); every public operation also returns its own error
// directly, which is the primary, idiomatic contract.
func (m *Manager) Err() error {
	return m.err
}

// Error implements the teacher's string-error convenience accessor.
func (m *Manager) Error() string {
	if m.err == nil {
		return ""
	}
	return m.err.Error()
}

func (m *Manager) fatal(format string, a ...interface{}) {
	err := fmt.Errorf(format+": %w", append(a, errConsistency)...)
	m.seterror(err)
	panic(err)
}
