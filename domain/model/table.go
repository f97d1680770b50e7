package model

// Table is tabular data read from a sheet or a database table.
type Table struct {
	// name is the source sheet or table name.
	name string
	// header holds normalized, unique column names.
	header Header
	// records are the data rows; each has len(header) cells.
	records []Record
	// columnInfo contains type information for each column.
	columnInfo []ColumnInfo
}

// NewTable create new Table and infers column types from the records.
func NewTable(
	name string,
	header Header,
	records []Record,
) *Table {
	return &Table{
		name:       name,
		header:     header,
		records:    records,
		columnInfo: InferColumnsInfo(header, records),
	}
}

// NewTableWithColumns creates a Table whose column types are already known,
// such as a database table with declared types.
func NewTableWithColumns(name string, columns []ColumnInfo, records []Record) *Table {
	header := make(Header, len(columns))
	for i, c := range columns {
		header[i] = c.Name
	}
	return &Table{
		name:       name,
		header:     header,
		records:    records,
		columnInfo: columns,
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Header return table header.
func (t *Table) Header() Header {
	return t.header
}

// Records return table records.
func (t *Table) Records() []Record {
	return t.records
}

// ColumnInfo returns the column type information.
func (t *Table) ColumnInfo() []ColumnInfo {
	return t.columnInfo
}

// ColumnTypes returns column name to storage type.
func (t *Table) ColumnTypes() map[string]ColumnType {
	types := make(map[string]ColumnType, len(t.columnInfo))
	for _, c := range t.columnInfo {
		types[c.Name] = c.Type
	}
	return types
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Head returns a table holding at most the first n records. Column types are
// carried over from t rather than re-inferred from the subset.
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, len(t.records)))
	records := make([]Record, n)
	copy(records, t.records[:n])
	return &Table{
		name:       t.name,
		header:     t.header,
		records:    records,
		columnInfo: t.columnInfo,
	}
}

// Equal compare Table.
func (t *Table) Equal(t2 *Table) bool {
	if t.name != t2.name || !t.header.Equal(t2.header) || len(t.records) != len(t2.records) {
		return false
	}
	for i, record := range t.records {
		if !record.Equal(t2.records[i]) {
			return false
		}
	}
	return true
}
