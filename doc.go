// Package sheetdb converts spreadsheet workbooks into SQLite databases and
// back.
//
// Each worksheet becomes one table. Header labels are normalized into safe,
// unique column names ("Prénom Client" becomes "prenom_client"), and column
// storage types are inferred from the cell values: whole numbers become
// INTEGER, decimals REAL, booleans INTEGER 0/1, and dates, durations and text
// TEXT. Dates are stored as "YYYY-MM-DD HH:MM:SS".
//
// # Reading a workbook
//
//	reader, err := sheetdb.NewSheetReader("sales.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//
//	sheets, err := reader.DescribeAllSheets(ctx)
//
// Compressed workbooks (sales.xlsx.gz, .bz2, .xz, .zst) are read the same way.
//
// # Converting
//
//	err = sheetdb.WithStore(ctx, "sales.db", func(ctx context.Context, store *sheetdb.Store) error {
//	    report, err := sheetdb.NewConverter(sheetdb.AutoResolver()).Convert(ctx, reader, store, sheets)
//	    ...
//	})
//
// Each table is written in its own transaction. When a table already exists
// the Resolver picks what happens: append, overwrite, rename, skip or cancel.
// The decision runs through the state machine in domain/model, so the same
// rules apply to prompts, flags and tests.
//
// # Exporting
//
//	reader, err := sheetdb.NewTableReader("sales.db")
//	tables, err := reader.DescribeAllTables(ctx)
//	report, err := sheetdb.NewExporter().Export(ctx, reader, sheetdb.NewSheetWriter("sales.xlsx"), tables)
//
// # Errors
//
// Errors can be classified with errors.Is against ErrNotFound,
// ErrUnsupportedFormat, ErrValidation, ErrStorage and ErrCanceled.
package sheetdb
