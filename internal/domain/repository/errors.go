package repository

import "errors"

// Store-level constraint violations, translated from driver errors so callers
// can match them with errors.Is.
var (
	ErrDuplicateKey        = errors.New("duplicate key value violates unique constraint")
	ErrForeignKeyViolation = errors.New("referenced row does not exist")
)
