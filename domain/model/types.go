// Package model provides the domain model for sheetdb: identifier
// normalization, column type inference and the conflict-resolution state
// machine. Nothing in this package performs I/O.
package model

import "strings"

// Header is table header.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Index returns the position of the column, or -1.
func (h Header) Index(name string) int {
	for i, v := range h {
		if v == name {
			return i
		}
	}
	return -1
}

// Record is one table row. A cell holds nil, int64, float64, bool,
// time.Time, time.Duration, string or []byte.
type Record []any

// NewRecord create new Record.
func NewRecord(r []any) Record {
	return Record(r)
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if !cellEqual(v, r2[i]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether every cell is nil.
func (r Record) IsEmpty() bool {
	for _, v := range r {
		if v != nil {
			return false
		}
	}
	return true
}

func cellEqual(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok || bok {
		return aok && bok && string(ab) == string(bb)
	}
	return a == b
}

// ColumnType represents the SQL column type
type ColumnType int

const (
	// ColumnTypeText represents TEXT column type
	ColumnTypeText ColumnType = iota
	// ColumnTypeInteger represents INTEGER column type
	ColumnTypeInteger
	// ColumnTypeReal represents REAL column type
	ColumnTypeReal
)

const (
	sqlTypeText    = "TEXT"
	sqlTypeInteger = "INTEGER"
	sqlTypeReal    = "REAL"
)

// String returns the SQL column type string
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeInteger:
		return sqlTypeInteger
	case ColumnTypeReal:
		return sqlTypeReal
	default:
		return sqlTypeText
	}
}

// ParseColumnType maps a declared SQLite column type to a ColumnType using
// SQLite's affinity rules. Anything without INTEGER or REAL affinity is TEXT.
func ParseColumnType(declared string) ColumnType {
	d := strings.ToUpper(declared)
	switch {
	case strings.Contains(d, "INT"):
		return ColumnTypeInteger
	case strings.Contains(d, "REAL"), strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"):
		return ColumnTypeReal
	default:
		return ColumnTypeText
	}
}

// ValueKind is the representation of a cell value, or the dominant
// representation of a column.
type ValueKind int

const (
	// KindEmpty is a null cell or a column with only null cells.
	KindEmpty ValueKind = iota
	// KindInteger is a whole number.
	KindInteger
	// KindFloat is a floating-point number.
	KindFloat
	// KindBoolean is true or false.
	KindBoolean
	// KindDatetime is a calendar date or timestamp.
	KindDatetime
	// KindDuration is an elapsed time or a time of day.
	KindDuration
	// KindString is text.
	KindString
	// KindMixed is a column whose cells disagree.
	KindMixed
)

// String returns the kind name used in column statistics.
func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindDatetime:
		return "datetime"
	case KindDuration:
		return "duration"
	case KindString:
		return "string"
	case KindMixed:
		return "mixed"
	default:
		return "empty"
	}
}

// ColumnType returns the storage type for values of this kind.
func (k ValueKind) ColumnType() ColumnType {
	switch k {
	case KindInteger, KindBoolean:
		return ColumnTypeInteger
	case KindFloat:
		return ColumnTypeReal
	default:
		return ColumnTypeText
	}
}

// ColumnInfo represents column information with name and inferred type
type ColumnInfo struct {
	Name string
	Kind ValueKind
	Type ColumnType
}

// ColumnDef is one row of SQLite's table_info pragma.
type ColumnDef struct {
	Name         string
	DeclaredType string
	NotNull      bool
	DefaultValue *string
	PrimaryKey   bool
}
