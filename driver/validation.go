package driver

import (
	"fmt"
	"strings"
)

// MaxColumnCount is SQLite's default SQLITE_MAX_COLUMN.
const MaxColumnCount = 2000

// MaxVariables is SQLite's default SQLITE_MAX_VARIABLE_NUMBER.
const MaxVariables = 32766

// maxLogValueLength bounds user-supplied strings written to the log.
const maxLogValueLength = 256

// ValidatePath rejects paths that cannot name a file.
func ValidatePath(path string) error {
	// Check for empty or whitespace-only paths
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}

	// Check for null byte injection
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	return nil
}

// ValidateColumnCount checks if the number of columns is within acceptable limits
func ValidateColumnCount(columnCount int) error {
	if columnCount > MaxColumnCount {
		return fmt.Errorf("%w: %d > %d", ErrTooManyColumns, columnCount, MaxColumnCount)
	}
	return nil
}

// ValidateIdentifier checks that name can be used as a quoted table or
// column name.
func ValidateIdentifier(name string) error {
	if name == "" || strings.Contains(name, "\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// SanitizeForLog strips control characters from a user-supplied value and
// truncates it, so a sheet name cannot forge log lines.
func SanitizeForLog(value string) string {
	value = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)

	if r := []rune(value); len(r) > maxLogValueLength {
		value = string(r[:maxLogValueLength]) + "..."
	}
	return value
}
