package repository

import "errors"

// ErrDuplicateKey indicates a unique constraint violation
var ErrDuplicateKey = errors.New("duplicate key")
