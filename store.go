package sheetdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/driver"
)

// Store writes tables into a SQLite database, creating the file when it does
// not exist. The database is opened on first use; call Close when done.
type Store struct {
	*database
}

// OpenStore returns a store for the database at path.
func OpenStore(path string, opts ...Option) *Store {
	return &Store{database: &database{path: path, opts: applyOptions(opts)}}
}

// WithStore opens a store, runs fn and closes the store on every path.
func WithStore(ctx context.Context, path string, fn func(context.Context, *Store) error, opts ...Option) (err error) {
	s := OpenStore(path, opts...)
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = NewErrorContext("close database", path).StorageError(closeErr)
		}
	}()
	return fn(ctx, s)
}

// DropTable drops the table if it exists.
func (s *Store) DropTable(ctx context.Context, name string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := driver.DropTable(ctx, db, name); err != nil {
		return NewErrorContext("drop table", s.path).WithTable(name).StorageError(err)
	}
	s.opts.logger.Info("table dropped", zap.String("table", driver.SanitizeForLog(name)))
	return nil
}

// InsertRows writes the table's records into the table called name and
// returns the number of rows inserted. Everything happens in one
// transaction, so a failure leaves the table as it was:
//
//   - PolicyFail returns ErrTableExists if the table exists.
//   - PolicyReplace drops the table and recreates it from t's columns.
//   - PolicyAppend adds rows to the existing table. Columns of t that the
//     table lacks cause ErrSchemaMismatch; table columns missing from t are
//     left to their default.
//
// A missing table is created under every policy. Rows are sent in batches of
// batchSize; temporal values are stored as text and booleans as 0/1.
func (s *Store) InsertRows(ctx context.Context, t *model.Table, name string, policy model.ConflictPolicy, batchSize int) (inserted int, err error) {
	ec := NewErrorContext("insert rows", s.path).WithTable(name)

	if len(t.Header()) == 0 {
		return 0, ec.Error(ErrNoColumns)
	}
	if err := driver.ValidateIdentifier(name); err != nil {
		return 0, ec.Error(fmt.Errorf("%w: %w", ErrValidation, err))
	}
	if err := driver.ValidateColumnCount(len(t.Header())); err != nil {
		return 0, ec.Error(fmt.Errorf("%w: %w", ErrValidation, err))
	}
	if batchSize <= 0 {
		batchSize = s.opts.batchSize
	}

	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, ec.StorageError(err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.opts.logger.Error("rollback failed",
					zap.String("context", "insert_rows"),
					zap.String("table", driver.SanitizeForLog(name)),
					zap.Error(rbErr))
			}
		}
	}()

	if err := s.prepareTable(ctx, tx, t, name, policy, ec); err != nil {
		return 0, err
	}

	inserted, err = insertBatches(ctx, tx, t, name, batchSize)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, ec.StorageError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, ec.StorageError(err)
	}

	s.opts.logger.Debug("rows inserted",
		zap.String("table", driver.SanitizeForLog(name)),
		zap.String("policy", policy.String()),
		zap.Int("rows", inserted))
	return inserted, nil
}

// prepareTable applies the conflict policy inside tx so that the table
// exists with a compatible schema afterwards.
func (s *Store) prepareTable(ctx context.Context, tx *sql.Tx, t *model.Table, name string, policy model.ConflictPolicy, ec *ErrorContext) error {
	exists, err := driver.TableExists(ctx, tx, name)
	if err != nil {
		return ec.StorageError(err)
	}
	if !exists {
		return createTable(ctx, tx, t, name, ec)
	}

	switch policy {
	case model.PolicyFail:
		return ec.Error(ErrTableExists)
	case model.PolicyReplace:
		if err := driver.DropTable(ctx, tx, name); err != nil {
			return ec.StorageError(err)
		}
		return createTable(ctx, tx, t, name, ec)
	case model.PolicyAppend:
		defs, err := driver.TableColumns(ctx, tx, name)
		if err != nil {
			return ec.StorageError(err)
		}
		existing := make(map[string]struct{}, len(defs))
		for _, def := range defs {
			existing[strings.ToLower(def.Name)] = struct{}{}
		}
		var unknown []string
		for _, col := range t.Header() {
			if _, ok := existing[strings.ToLower(col)]; !ok {
				unknown = append(unknown, col)
			}
		}
		if len(unknown) > 0 {
			return ec.WithDetails("unknown columns: " + strings.Join(unknown, ", ")).Error(ErrSchemaMismatch)
		}
		return nil
	default:
		return ec.Error(fmt.Errorf("%w: unknown conflict policy %d", ErrValidation, policy))
	}
}

func createTable(ctx context.Context, tx *sql.Tx, t *model.Table, name string, ec *ErrorContext) error {
	if err := driver.CreateTable(ctx, tx, name, t.ColumnInfo()); err != nil {
		return ec.StorageError(err)
	}
	return nil
}

// insertBatches inserts the records batch by batch. Each batch is split into
// multi-row statements that stay under SQLite's bound-variable limit.
func insertBatches(ctx context.Context, tx *sql.Tx, t *model.Table, name string, batchSize int) (int, error) {
	columns := []string(t.Header())
	records := model.NormalizeTemporal(t.Records())
	perStmt := driver.RowsPerStatement(len(columns), batchSize)

	var fullStmt *sql.Stmt
	defer func() {
		if fullStmt != nil {
			_ = fullStmt.Close()
		}
	}()

	inserted := 0
	for start := 0; start < len(records); start += batchSize {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		batch := records[start:min(start+batchSize, len(records))]

		for off := 0; off < len(batch); off += perStmt {
			chunk := batch[off:min(off+perStmt, len(batch))]
			args := make([]any, 0, len(chunk)*len(columns))
			for _, record := range chunk {
				for i := range columns {
					var v any
					if i < len(record) {
						v = model.SQLValue(record[i])
					}
					args = append(args, v)
				}
			}

			if len(chunk) == perStmt {
				if fullStmt == nil {
					stmt, err := tx.PrepareContext(ctx, driver.BuildInsertQuery(name, columns, perStmt))
					if err != nil {
						return inserted, err
					}
					fullStmt = stmt
				}
				if _, err := fullStmt.ExecContext(ctx, args...); err != nil {
					return inserted, err
				}
			} else if _, err := tx.ExecContext(ctx, driver.BuildInsertQuery(name, columns, len(chunk)), args...); err != nil {
				return inserted, err
			}
			inserted += len(chunk)
		}
	}
	return inserted, nil
}
