package sheetdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/sheetdb/domain/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s := OpenStore(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func queryRows(t *testing.T, s *Store, query string) [][]any {
	t.Helper()

	db, err := s.conn(context.Background())
	require.NoError(t, err)
	rows, err := db.QueryContext(context.Background(), query)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		out = append(out, values)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestStoreInsertRowsCreatesTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tbl := model.NewTable("people", model.NewHeader([]string{"id", "name", "score", "active", "born", "shift"}), []model.Record{
		{int64(1), "Alice", 9.5, true, day, 90 * time.Minute},
		{int64(2), "Bob", nil, false, nil, nil},
	})

	n, err := s.InsertRows(ctx, tbl, "people", model.PolicyFail, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	defs, err := s.TableColumns(ctx, "people")
	require.NoError(t, err)
	declared := make([]string, len(defs))
	for i, d := range defs {
		declared[i] = d.DeclaredType
	}
	assert.Equal(t, []string{"INTEGER", "TEXT", "REAL", "INTEGER", "TEXT", "TEXT"}, declared)

	rows := queryRows(t, s, `SELECT id, name, score, active, born, shift FROM "people" ORDER BY id`)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{int64(1), "Alice", 9.5, int64(1), "2024-03-01 00:00:00", "01:30:00"}, rows[0])
	assert.Equal(t, []any{int64(2), "Bob", nil, int64(0), nil, nil}, rows[1])
}

func TestStoreInsertRowsPolicies(t *testing.T) {
	t.Parallel()

	header := []string{"id", "name"}
	existing := []model.Record{{int64(1), "a"}, {int64(2), "b"}, {int64(3), "c"}}
	incoming := model.NewTable("t", model.NewHeader(header), []model.Record{{int64(10), "x"}, {int64(11), "y"}})

	tests := []struct {
		name     string
		policy   model.ConflictPolicy
		wantErr  error
		wantRows int
	}{
		{name: "append adds to existing rows", policy: model.PolicyAppend, wantRows: 5},
		{name: "replace keeps only new rows", policy: model.PolicyReplace, wantRows: 2},
		{name: "fail leaves table unchanged", policy: model.PolicyFail, wantErr: ErrTableExists, wantRows: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			s := openTestStore(t)
			insertTable(t, s, "t", header, existing...)

			n, err := s.InsertRows(ctx, incoming, "t", tt.policy, 0)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Zero(t, n)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 2, n)
			}

			rows, err := s.RowCount(ctx, "t")
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestStoreInsertRowsAppendSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("extra incoming column is rejected before writing", func(t *testing.T) {
		t.Parallel()

		s := openTestStore(t)
		insertTable(t, s, "t", []string{"id", "name"}, model.Record{int64(1), "a"})

		extra := model.NewTable("t", model.NewHeader([]string{"id", "name", "email"}), []model.Record{{int64(2), "b", "b@example.com"}})
		_, err := s.InsertRows(ctx, extra, "t", model.PolicyAppend, 0)
		require.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "email")

		rows, err := s.RowCount(ctx, "t")
		require.NoError(t, err)
		assert.Equal(t, 1, rows)
	})

	t.Run("missing incoming column is stored as null", func(t *testing.T) {
		t.Parallel()

		s := openTestStore(t)
		insertTable(t, s, "t", []string{"id", "name"}, model.Record{int64(1), "a"})

		partial := model.NewTable("t", model.NewHeader([]string{"ID"}), []model.Record{{int64(2)}})
		n, err := s.InsertRows(ctx, partial, "t", model.PolicyAppend, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		rows := queryRows(t, s, `SELECT id, name FROM "t" ORDER BY id`)
		assert.Equal(t, [][]any{{int64(1), "a"}, {int64(2), nil}}, rows)
	})
}

func TestStoreInsertRowsBatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	records := make([]model.Record, 7)
	for i := range records {
		records[i] = model.Record{int64(i), "row"}
	}
	tbl := model.NewTable("t", model.NewHeader([]string{"n", "label"}), records)

	n, err := s.InsertRows(ctx, tbl, "t", model.PolicyFail, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	rows := queryRows(t, s, `SELECT SUM(n) FROM "t"`)
	assert.Equal(t, int64(21), rows[0][0])
}

func TestStoreInsertRowsRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	db, err := s.conn(ctx)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE "strict" ("id" INTEGER, "name" TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO "strict" VALUES (1, 'kept')`)
	require.NoError(t, err)

	records := []model.Record{{int64(2), "ok"}, {int64(3), "ok"}, {int64(4), nil}}
	tbl := model.NewTable("strict", model.NewHeader([]string{"id", "name"}), records)

	_, err = s.InsertRows(ctx, tbl, "strict", model.PolicyAppend, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	rows := queryRows(t, s, `SELECT id, name FROM "strict"`)
	assert.Equal(t, [][]any{{int64(1), "kept"}}, rows, "earlier batches are rolled back too")
}

func TestStoreInsertRowsReplaceRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	insertTable(t, s, "inventory", []string{"sku", "qty"},
		model.Record{"A-1", int64(4)},
		model.Record{"B-2", int64(9)},
	)

	records := []model.Record{{"x"}, {"y"}, {struct{}{}}}
	tbl := model.NewTable("inventory", model.NewHeader([]string{"label"}), records)

	_, err := s.InsertRows(ctx, tbl, "inventory", model.PolicyReplace, 1)
	require.ErrorIs(t, err, ErrStorage)

	columns, err := s.TableColumns(ctx, "inventory")
	require.NoError(t, err)
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"sku", "qty"}, names, "the dropped table comes back")

	rows := queryRows(t, s, `SELECT sku, qty FROM "inventory" ORDER BY sku`)
	assert.Equal(t, [][]any{{"A-1", int64(4)}, {"B-2", int64(9)}}, rows)
}

func TestStoreTableNamesIgnoreCase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	db, err := s.conn(ctx)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE "Clients" ("id" INTEGER, "name" TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO "Clients" VALUES (1, 'Alice')`)
	require.NoError(t, err)

	ok, err := s.TableExists(ctx, "clients")
	require.NoError(t, err)
	assert.True(t, ok)

	incoming := model.NewTable("clients", model.NewHeader([]string{"id", "name"}), []model.Record{{int64(2), "Bob"}})

	_, err = s.InsertRows(ctx, incoming, "clients", model.PolicyFail, 0)
	require.ErrorIs(t, err, ErrTableExists)
	assert.ErrorIs(t, err, ErrValidation)

	n, err := s.InsertRows(ctx, incoming, "clients", model.PolicyAppend, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := s.RowCount(ctx, "Clients")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStoreInsertRowsRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.InsertRows(ctx, model.NewTable("e", model.Header{}, nil), "e", model.PolicyFail, 0)
	assert.ErrorIs(t, err, ErrNoColumns)

	tbl := model.NewTable("t", model.NewHeader([]string{"a"}), []model.Record{{int64(1)}})
	_, err = s.InsertRows(ctx, tbl, "", model.PolicyFail, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStoreInsertRowsCanceled(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tbl := model.NewTable("t", model.NewHeader([]string{"a"}), []model.Record{{int64(1)}})
	_, err := s.InsertRows(ctx, tbl, "t", model.PolicyFail, 0)
	require.Error(t, err)
	assert.True(t, IsCanceled(err) || errors.Is(err, ErrStorage))
}

func TestStoreDropAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	size, formatted := s.DatabaseSize()
	assert.Zero(t, size)
	assert.Equal(t, "0 B", formatted)

	insertTable(t, s, "b", []string{"x", "y"}, model.Record{int64(1), "a"}, model.Record{int64(2), "b"})
	insertTable(t, s, "a", []string{"x"}, model.Record{int64(1)})

	stats, err := s.DatabaseStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TableCount)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Positive(t, stats.SizeBytes)
	assert.Equal(t, []model.TableStat{
		{Name: "a", Rows: 1, Columns: 1},
		{Name: "b", Rows: 2, Columns: 2},
	}, stats.Tables)

	require.NoError(t, s.DropTable(ctx, "b"))
	require.NoError(t, s.DropTable(ctx, "b"), "dropping a missing table is not an error")
	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tables)
}

func TestWithStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "with.db")
	var captured *Store
	err := WithStore(context.Background(), path, func(ctx context.Context, s *Store) error {
		captured = s
		insertTable(t, s, "t", []string{"a"}, model.Record{int64(1)})
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, captured.db, "store is closed after the callback")

	sentinel := errors.New("boom")
	err = WithStore(context.Background(), path, func(context.Context, *Store) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}
