package sheetdb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/nao1215/sheetdb/domain/model"
)

// Conflict describes an existing destination a front end must decide about.
type Conflict struct {
	Scope model.Scope
	// Name is the database or workbook path, or the table name.
	Name string
	// ExistingRows is the row count of an existing table; zero otherwise.
	ExistingRows int
	// Database is the destination database path for table conflicts.
	Database string
}

// Resolver chooses a transition for a conflict. Interactive prompts, flags
// and tests each provide their own Resolver.
type Resolver interface {
	Resolve(ctx context.Context, c Conflict) (model.Decision, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, c Conflict) (model.Decision, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, c Conflict) (model.Decision, error) {
	return f(ctx, c)
}

// FixedResolver answers every conflict of a scope with the same action.
func FixedResolver(database, table, workbook model.Action) Resolver {
	return ResolverFunc(func(_ context.Context, c Conflict) (model.Decision, error) {
		switch c.Scope {
		case model.ScopeTable:
			return model.Decision{Action: table}, nil
		case model.ScopeWorkbook:
			return model.Decision{Action: workbook}, nil
		default:
			return model.Decision{Action: database}, nil
		}
	})
}

// AutoResolver is used when the user confirmed everything up front: an
// existing database is reused, existing tables are appended to and an
// existing workbook is overwritten.
func AutoResolver() Resolver {
	return FixedResolver(model.ActionUseExisting, model.ActionUseExisting, model.ActionOverwrite)
}

// maxRenames bounds how often a front end may rename onto another existing
// destination before the run gives up.
const maxRenames = 16

// ResolveDestination returns the path a database or workbook should be
// written to. When path exists the resolver decides: overwrite deletes the
// file, use-existing keeps it, rename retries with the new path, and cancel
// returns ErrCanceled.
func ResolveDestination(ctx context.Context, path string, scope model.Scope, resolver Resolver, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for range maxRenames {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return path, nil
			}
			return "", NewErrorContext("stat", path).StorageError(err)
		}

		resolution := model.NewResolution(scope, path)
		decision, err := resolver.Resolve(ctx, Conflict{Scope: scope, Name: path})
		if err != nil {
			return "", err
		}
		state, err := resolution.Apply(decision)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrValidation, err)
		}
		logger.Info("existing destination resolved",
			zap.String("scope", scope.String()),
			zap.String("path", path),
			zap.String("decision", state.String()))

		switch state {
		case model.StateUseExisting:
			return path, nil
		case model.StateOverwrite:
			if err := os.Remove(path); err != nil {
				return "", NewErrorContext("remove", path).StorageError(err)
			}
			return path, nil
		case model.StateRename:
			path = resolution.Target()
		default:
			return "", ErrCanceled
		}
	}
	return "", fmt.Errorf("%w: too many renames onto existing files", ErrValidation)
}
