package workflow

import "errors"

var (
	// ErrNothingToUndo is returned by Undo when the history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNoTransition marks a key whose available transitions did not
	// contain the requested one.
	ErrNoTransition = errors.New("no matching transition")

	// ErrNoInverse marks a key that offers no transition back to the
	// status it left.
	ErrNoInverse = errors.New("no transition back to previous status")
)
