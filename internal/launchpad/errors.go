package launchpad

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned synchronously for malformed arguments.
	ErrInvalidInput = errors.New("launchpad: invalid input")
	// ErrLoadSite prefixes failures to fetch the site document.
	ErrLoadSite = errors.New("launchpad: failed to load site")
	// ErrGroupNotFound is returned when a group id is not in the document.
	ErrGroupNotFound = errors.New("launchpad: group not found")
	// ErrTileNotFound is returned when a tile is not in the given group.
	ErrTileNotFound = errors.New("launchpad: tile not found")
	// ErrNotResettable is returned by ResetGroup for user-created groups.
	ErrNotResettable = errors.New("launchpad: group is not resettable")
	// ErrTileNotResolved is returned when a tile has no cached resolution.
	ErrTileNotResolved = errors.New("launchpad: tile not resolved")
	// ErrNoViewFactory is returned by TileView without a configured factory.
	ErrNoViewFactory = errors.New("launchpad: no view factory configured")
)

// MutationError reports a failed mutation. Previous carries the value before
// the mutation (a title or a group) so callers can revert optimistic UI state.
type MutationError struct {
	Op       string
	Err      error
	Previous any
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func loadFailure(op string, err error) error {
	return &MutationError{Op: op, Err: fmt.Errorf("%w: %w", ErrLoadSite, err)}
}
