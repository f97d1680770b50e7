package model

// PreviewRows is how many records a descriptor preview holds.
const PreviewRows = 10

// SheetDescriptor summarizes one worksheet.
type SheetDescriptor struct {
	SheetName   string
	TableName   string
	Rows        int
	Columns     []ColumnInfo
	ColumnTypes map[string]ColumnType
	// Preview holds the first rows for display. Counts never come from it.
	Preview *Table
	Stats   []ColumnStat
}

// ColumnCount returns the number of columns.
func (d *SheetDescriptor) ColumnCount() int {
	return len(d.Columns)
}

// ColumnNames returns the normalized column names in order.
func (d *SheetDescriptor) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// NewSheetDescriptor builds a descriptor from a fully read sheet.
func NewSheetDescriptor(sheetName string, t *Table, previewRows int) *SheetDescriptor {
	return &SheetDescriptor{
		SheetName:   sheetName,
		TableName:   NormalizeTableName(sheetName),
		Rows:        t.Len(),
		Columns:     t.ColumnInfo(),
		ColumnTypes: t.ColumnTypes(),
		Preview:     t.Head(previewRows),
		Stats:       ColumnStats(t),
	}
}

// TableDescriptor summarizes one database table.
type TableDescriptor struct {
	Name        string
	Rows        int
	ColumnNames []string
	// ColumnTypes maps a column to its declared type, e.g. "INTEGER".
	ColumnTypes map[string]string
}

// ColumnCount returns the number of columns.
func (d *TableDescriptor) ColumnCount() int {
	return len(d.ColumnNames)
}

// NewTableDescriptor builds a descriptor from PRAGMA table_info output.
func NewTableDescriptor(name string, rows int, defs []ColumnDef) *TableDescriptor {
	d := &TableDescriptor{
		Name:        name,
		Rows:        rows,
		ColumnNames: make([]string, len(defs)),
		ColumnTypes: make(map[string]string, len(defs)),
	}
	for i, def := range defs {
		d.ColumnNames[i] = def.Name
		d.ColumnTypes[def.Name] = def.DeclaredType
	}
	return d
}

// TableStat is the per-table part of DatabaseStats.
type TableStat struct {
	Name    string
	Rows    int
	Columns int
}

// DatabaseStats summarizes a database file.
type DatabaseStats struct {
	Path          string
	SizeBytes     int64
	SizeFormatted string
	TableCount    int
	TotalRows     int
	Tables        []TableStat
}
