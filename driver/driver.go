package driver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nao1215/sheetdb/domain/model"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DriverName is the database/sql name modernc.org/sqlite registers.
const DriverName = "sqlite"

// busyTimeoutMillis is how long a statement waits on a locked database.
const busyTimeoutMillis = 5000

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens the SQLite file at path, creating it when it does not exist.
// The pool holds a single connection; sheetdb never issues statements
// concurrently.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMillis)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	return db, nil
}

// QuoteIdentifier quotes a table or column name for use in SQL text.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ListTables returns user tables ordered by name. SQLite's internal
// sqlite_* objects are excluded.
func ListTables(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// TableExists checks if a table exists in the database. SQLite resolves
// table names case-insensitively, so "Clients" and "clients" are the same
// table.
func TableExists(ctx context.Context, q Querier, tableName string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE", tableName).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountRows returns the number of rows in a table.
func CountRows(ctx context.Context, q Querier, tableName string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM " + QuoteIdentifier(tableName) //nolint:gosec // identifier is quoted
	if err := q.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// TableColumns returns the column definitions reported by PRAGMA table_info,
// in column order. A missing table yields no columns.
func TableColumns(ctx context.Context, q Querier, tableName string) ([]model.ColumnDef, error) {
	rows, err := q.QueryContext(ctx, "PRAGMA table_info("+QuoteIdentifier(tableName)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []model.ColumnDef
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		def := model.ColumnDef{
			Name:         name,
			DeclaredType: declType,
			NotNull:      notNull != 0,
			PrimaryKey:   pk != 0,
		}
		if dflt.Valid {
			v := dflt.String
			def.DefaultValue = &v
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// CreateTable creates a table whose columns take the given storage types.
func CreateTable(ctx context.Context, e Execer, tableName string, columns []model.ColumnInfo) error {
	if err := ValidateIdentifier(tableName); err != nil {
		return err
	}
	if err := ValidateColumnCount(len(columns)); err != nil {
		return err
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		if err := ValidateIdentifier(col.Name); err != nil {
			return err
		}
		defs[i] = QuoteIdentifier(col.Name) + " " + col.Type.String()
	}

	query := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(tableName), strings.Join(defs, ", "))
	_, err := e.ExecContext(ctx, query)
	return err
}

// DropTable drops a table if it exists.
func DropTable(ctx context.Context, e Execer, tableName string) error {
	_, err := e.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdentifier(tableName))
	return err
}

// BuildInsertQuery returns a multi-row INSERT for rowCount rows into the
// named columns.
func BuildInsertQuery(tableName string, columns []string, rowCount int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdentifier(c)
	}

	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	values := make([]string, rowCount)
	for i := range values {
		values[i] = row
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		QuoteIdentifier(tableName), strings.Join(quoted, ", "), strings.Join(values, ", "))
}

// RowsPerStatement returns how many rows of columnCount values fit in one
// statement without exceeding SQLite's bound-variable limit.
func RowsPerStatement(columnCount, batchSize int) int {
	if columnCount <= 0 {
		return max(batchSize, 1)
	}
	return max(1, min(batchSize, MaxVariables/columnCount))
}
