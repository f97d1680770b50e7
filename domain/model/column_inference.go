package model

import (
	"regexp"
	"strings"
	"time"
)

// Datetime layouts accepted for cells stored as ISO-8601 text.
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339Nano, time.RFC3339},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02T15:04"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
}

// ParseDatetime parses an ISO-8601 date or timestamp.
func ParseDatetime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// KindOf returns the kind of a single cell value.
func KindOf(v any) ValueKind {
	switch v.(type) {
	case nil:
		return KindEmpty
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInteger
	case float32, float64:
		return KindFloat
	case bool:
		return KindBoolean
	case time.Time:
		return KindDatetime
	case time.Duration:
		return KindDuration
	default:
		return KindString
	}
}

// InferValueKind determines the dominant kind of a column. Null cells are
// ignored; integers mixed with floats widen to float; any other mix is
// KindMixed.
func InferValueKind(values []any) ValueKind {
	kind := KindEmpty
	for _, v := range values {
		k := KindOf(v)
		switch {
		case k == KindEmpty || k == kind:
			continue
		case kind == KindEmpty:
			kind = k
		case (kind == KindInteger && k == KindFloat) || (kind == KindFloat && k == KindInteger):
			kind = KindFloat
		default:
			return KindMixed
		}
	}
	return kind
}

// InferColumnType infers the storage type of a column from its values.
func InferColumnType(values []any) ColumnType {
	return InferValueKind(values).ColumnType()
}

// InferColumnsInfo infers type information for all columns in the table
func InferColumnsInfo(header Header, records []Record) []ColumnInfo {
	columnInfo := make([]ColumnInfo, len(header))

	for i, colName := range header {
		kind := InferValueKind(columnValues(records, i))
		columnInfo[i] = ColumnInfo{
			Name: colName,
			Kind: kind,
			Type: kind.ColumnType(),
		}
	}

	return columnInfo
}

// columnValues extracts column i; rows shorter than the header yield nil.
func columnValues(records []Record, i int) []any {
	values := make([]any, len(records))
	for r, record := range records {
		if i < len(record) {
			values[r] = record[i]
		}
	}
	return values
}
