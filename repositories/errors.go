package repositories

import "fmt"

// NameConflictError is the structured failure handed to the loser of a
// concurrent or duplicate creation under the same screen name.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("Screen exists with name: %q.", e.Name)
}

// NotFoundError reports an update requested against an unknown screen
// name. Updates never implicitly create. The wording is preserved for
// compatibility with existing clients.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Unabled to find screen: %q.", e.Name)
}
