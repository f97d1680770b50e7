package sheetdb

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/driver"
)

// TableReader reads tables from an existing SQLite database. The database is
// opened on first use; call Close when done.
type TableReader struct {
	*database
}

// NewTableReader returns a reader for the database at path. It fails with
// ErrFileNotFound when the file does not exist. A file without a .db,
// .sqlite or .sqlite3 extension is accepted with a logged warning.
func NewTableReader(path string, opts ...Option) (*TableReader, error) {
	o := applyOptions(opts)
	recognized, err := newValidator().validateDatabase(path)
	if err != nil {
		return nil, err
	}
	if !recognized {
		o.logger.Warn("database file has an unusual extension",
			zap.String("context", "open_database"),
			zap.String("path", path))
	}
	return &TableReader{database: &database{path: path, opts: o}}, nil
}

// TableInfo returns the row count and declared columns of a table.
func (r *TableReader) TableInfo(ctx context.Context, name string) (*model.TableDescriptor, error) {
	ok, err := r.TableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrTableNotFound, name, r.path)
	}

	defs, err := r.TableColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := r.RowCount(ctx, name)
	if err != nil {
		return nil, err
	}
	return model.NewTableDescriptor(name, rows, defs), nil
}

// ReadTable reads every row of a table. Column types come from the declared
// types; columns declared without a type get an inferred one.
func (r *TableReader) ReadTable(ctx context.Context, name string) (*model.Table, error) {
	ec := NewErrorContext("read table", r.path).WithTable(name)

	ok, err := r.TableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrTableNotFound, name, r.path)
	}

	defs, err := driver.TableColumns(ctx, r.db, name)
	if err != nil {
		return nil, ec.StorageError(err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+driver.QuoteIdentifier(name)) //nolint:gosec // identifier is quoted
	if err != nil {
		return nil, ec.StorageError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, ec.StorageError(err)
	}

	var records []model.Record
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, ec.StorageError(err)
		}
		records = append(records, model.NewRecord(values))
	}
	if err := rows.Err(); err != nil {
		return nil, ec.StorageError(err)
	}

	declared := make(map[string]string, len(defs))
	for _, def := range defs {
		declared[def.Name] = def.DeclaredType
	}
	infos := model.InferColumnsInfo(model.NewHeader(columns), records)
	for i := range infos {
		if decl := declared[infos[i].Name]; decl != "" {
			infos[i].Type = model.ParseColumnType(decl)
		}
	}

	return model.NewTableWithColumns(name, infos, records), nil
}

// DescribeAllTables describes every table. A table that cannot be
// inspected is logged and left out.
func (r *TableReader) DescribeAllTables(ctx context.Context) ([]*model.TableDescriptor, error) {
	tables, err := r.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]*model.TableDescriptor, 0, len(tables))
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return descriptors, err
		}
		d, err := r.TableInfo(ctx, table)
		if err != nil {
			r.opts.logger.Error("failed to describe table",
				zap.String("context", "describe_table"),
				zap.String("table", driver.SanitizeForLog(table)),
				zap.Error(err))
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}
