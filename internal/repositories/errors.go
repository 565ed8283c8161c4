package repositories

import "errors"

// ErrNotFound is returned by every repository when the requested record does
// not exist, so callers can branch without string matching.
var ErrNotFound = errors.New("record not found")
