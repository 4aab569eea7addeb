package usecase

import "errors"

// ErrNotFound covers an unknown style, an unknown source within a
// style, and a style without a stored upstream URL for the source.
var ErrNotFound = errors.New("not found")
