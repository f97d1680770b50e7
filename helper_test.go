package sheetdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/sheetdb/domain/model"
)

// testSheet is a worksheet fixture; rows[0] is the header row.
type testSheet struct {
	name string
	rows [][]any
}

// newWorkbook builds a workbook in memory. The default sheet is renamed to
// the first fixture sheet.
func newWorkbook(t *testing.T, sheets ...testSheet) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &values))
		}
	}
	return f
}

// writeWorkbook saves the fixture sheets as dir/name and returns the path.
func writeWorkbook(t *testing.T, dir, name string, sheets ...testSheet) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, newWorkbook(t, sheets...).SaveAs(path))
	return path
}

// salesSheets is a two-sheet workbook used by several tests.
func salesSheets() []testSheet {
	return []testSheet{
		{
			name: "Clients",
			rows: [][]any{
				{"ID", "Prénom Client", "Score", "Actif"},
				{1, "Alice", 9.5, true},
				{2, "Bob", 7.25, false},
				{3, "Chloé", nil, true},
			},
		},
		{
			name: "Ventes Été",
			rows: [][]any{
				{"Produit", "Quantité", "Produit"},
				{"pomme", 10, "rouge"},
				{"poire", 4, "verte"},
			},
		},
	}
}

// insertTable creates and fills a table through the store.
func insertTable(t *testing.T, store *Store, name string, header []string, records ...model.Record) {
	t.Helper()

	tbl := model.NewTable(name, model.NewHeader(header), records)
	_, err := store.InsertRows(context.Background(), tbl, name, model.PolicyFail, 0)
	require.NoError(t, err)
}
