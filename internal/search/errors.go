package search

import "errors"

// Domain errors for the search package.
var (
	// ErrInvalidOperator is returned when a hybrid query uses an operator
	// outside the supported comparison set.
	ErrInvalidOperator = errors.New("search: invalid operator")

	// ErrSavedSearchNotFound is returned when a saved search id does not exist.
	ErrSavedSearchNotFound = errors.New("search: saved search not found")
)
