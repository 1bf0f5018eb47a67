package kv

import "errors"

// ErrNotFound is returned when no value is stored under the requested key.
var ErrNotFound = errors.New("key not found")
