package repository

import "errors"

// ErrNotFound is returned by every repository when the row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique key is already taken.
var ErrConflict = errors.New("conflict")
