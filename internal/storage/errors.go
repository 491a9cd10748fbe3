package storage

import "errors"

// ErrNotFound is returned when a requested document, session, or clause
// does not exist.
var ErrNotFound = errors.New("storage: not found")
