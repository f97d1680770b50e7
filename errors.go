package sheetdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Use errors.Is to classify an error returned by this package.
var (
	// ErrNotFound indicates a missing file, sheet or table
	ErrNotFound = errors.New("sheetdb: not found")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("sheetdb: unsupported file format")

	// ErrValidation indicates a request that cannot be carried out as asked
	ErrValidation = errors.New("sheetdb: validation failed")

	// ErrStorage indicates a failure reading or writing a workbook or database
	ErrStorage = errors.New("sheetdb: storage failure")

	// ErrCanceled indicates the user canceled the run. It is not a failure.
	ErrCanceled = errors.New("sheetdb: canceled by user")
)

// Specific errors, each wrapping one of the kinds above.
var (
	// ErrFileNotFound indicates file not found
	ErrFileNotFound = fmt.Errorf("%w: file", ErrNotFound)

	// ErrSheetNotFound indicates a sheet missing from the workbook
	ErrSheetNotFound = fmt.Errorf("%w: sheet", ErrNotFound)

	// ErrTableNotFound indicates a table missing from the database
	ErrTableNotFound = fmt.Errorf("%w: table", ErrNotFound)

	// ErrTableExists indicates an insert with the fail policy into an existing table
	ErrTableExists = fmt.Errorf("%w: table already exists", ErrValidation)

	// ErrSchemaMismatch indicates appended data with columns the table does not have
	ErrSchemaMismatch = fmt.Errorf("%w: columns do not match existing table", ErrValidation)

	// ErrNoColumns indicates data without a header row
	ErrNoColumns = fmt.Errorf("%w: no columns", ErrValidation)
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	parts := []string{fmt.Sprintf("sheetdb: %s failed", ec.Operation)}

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	msg := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", msg, baseErr)
	}
	return errors.New(msg)
}

// StorageError wraps err as an ErrStorage with the given context. It
// returns nil for a nil err.
func (ec *ErrorContext) StorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return ec.Error(err)
	}
	return ec.Error(fmt.Errorf("%w: %w", ErrStorage, err))
}

// IsCanceled reports whether err means the user stopped the run, either
// through a cancel decision or an interrupted context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}
