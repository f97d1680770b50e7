package sheetdb

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/driver"
)

// validator handles validation of source paths
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validateSource checks that path names an existing regular file.
func (v *validator) validateSource(path string) error {
	if err := driver.ValidatePath(path); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return NewErrorContext("stat", path).StorageError(err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrValidation, path)
	}
	return nil
}

// validateWorkbook checks that path is an existing workbook.
func (v *validator) validateWorkbook(path string) (*model.File, error) {
	if err := v.validateSource(path); err != nil {
		return nil, err
	}
	f := model.NewFile(path)
	if !f.IsWorkbook() {
		return nil, fmt.Errorf("%w: %s (expected .xlsx, .xlsm or .xls)", ErrUnsupportedFormat, path)
	}
	return f, nil
}

// validateDatabase checks that path is an existing file. Unrecognized
// extensions are reported through the returned flag, not as an error.
func (v *validator) validateDatabase(path string) (recognized bool, err error) {
	if err := v.validateSource(path); err != nil {
		return false, err
	}
	return model.NewFile(path).IsDatabase(), nil
}
