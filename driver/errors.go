package driver

import "errors"

// Predefined errors
var (
	// ErrInvalidPath is returned when a path is empty or contains a null byte
	ErrInvalidPath = errors.New("sheetdb driver: invalid path")

	// ErrInvalidIdentifier is returned when an SQL identifier is invalid
	ErrInvalidIdentifier = errors.New("sheetdb driver: invalid SQL identifier")

	// ErrTooManyColumns is returned when a table has more columns than SQLite allows
	ErrTooManyColumns = errors.New("sheetdb driver: too many columns")
)
