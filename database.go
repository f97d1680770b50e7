package sheetdb

import (
	"context"
	"database/sql"
	"os"

	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/driver"
)

// database is a lazily opened SQLite handle shared by TableReader and Store.
type database struct {
	path string
	opts options
	db   *sql.DB
}

func (d *database) conn(ctx context.Context) (*sql.DB, error) {
	if d.db != nil {
		return d.db, nil
	}
	db, err := driver.Open(ctx, d.path)
	if err != nil {
		return nil, NewErrorContext("open database", d.path).StorageError(err)
	}
	d.db = db
	return db, nil
}

// Close closes the database handle. It is safe to call more than once.
func (d *database) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Path returns the database file path.
func (d *database) Path() string {
	return d.path
}

// ListTables returns the user tables ordered by name.
func (d *database) ListTables(ctx context.Context) ([]string, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := driver.ListTables(ctx, db)
	if err != nil {
		return nil, NewErrorContext("list tables", d.path).StorageError(err)
	}
	return tables, nil
}

// TableExists reports whether the table exists.
func (d *database) TableExists(ctx context.Context, name string) (bool, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return false, err
	}
	ok, err := driver.TableExists(ctx, db, name)
	if err != nil {
		return false, NewErrorContext("check table", d.path).WithTable(name).StorageError(err)
	}
	return ok, nil
}

// RowCount returns the number of rows in the table.
func (d *database) RowCount(ctx context.Context, name string) (int, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return 0, err
	}
	n, err := driver.CountRows(ctx, db, name)
	if err != nil {
		return 0, NewErrorContext("count rows", d.path).WithTable(name).StorageError(err)
	}
	return n, nil
}

// TableColumns returns the declared columns of a table.
func (d *database) TableColumns(ctx context.Context, name string) ([]model.ColumnDef, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	defs, err := driver.TableColumns(ctx, db, name)
	if err != nil {
		return nil, NewErrorContext("inspect table", d.path).WithTable(name).StorageError(err)
	}
	return defs, nil
}

// DatabaseSize returns the file size in bytes and in human-readable form.
// A missing file has size zero.
func (d *database) DatabaseSize() (int64, string) {
	info, err := os.Stat(d.path)
	if err != nil {
		return 0, model.FormatSize(0)
	}
	return info.Size(), model.FormatSize(info.Size())
}

// DatabaseStats summarizes the database: size, tables, rows and columns.
func (d *database) DatabaseStats(ctx context.Context) (*model.DatabaseStats, error) {
	tables, err := d.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	size, formatted := d.DatabaseSize()
	stats := &model.DatabaseStats{
		Path:          d.path,
		SizeBytes:     size,
		SizeFormatted: formatted,
		TableCount:    len(tables),
		Tables:        make([]model.TableStat, 0, len(tables)),
	}
	for _, table := range tables {
		rows, err := d.RowCount(ctx, table)
		if err != nil {
			return nil, err
		}
		defs, err := d.TableColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		stats.TotalRows += rows
		stats.Tables = append(stats.Tables, model.TableStat{Name: table, Rows: rows, Columns: len(defs)})
	}
	return stats, nil
}
