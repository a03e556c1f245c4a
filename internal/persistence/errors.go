package persistence

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("persistence: record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation is returned when a referenced record is missing
	// or still referenced.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned when a check constraint fails.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrOverlap is returned by the storage backstop when a schedule write
	// would overlap an existing booking in the same room and date.
	ErrOverlap = errors.New("persistence: overlapping schedule")
)
