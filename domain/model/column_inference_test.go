package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInferColumnType(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		values   []any
		kind     ValueKind
		expected ColumnType
	}{
		{
			name:     "all integers",
			values:   []any{int64(123), int64(456), int64(789)},
			kind:     KindInteger,
			expected: ColumnTypeInteger,
		},
		{
			name:     "mixed integers and floats",
			values:   []any{int64(123), 45.6, int64(789)},
			kind:     KindFloat,
			expected: ColumnTypeReal,
		},
		{
			name:     "all floats",
			values:   []any{12.3, 45.6, 78.9},
			kind:     KindFloat,
			expected: ColumnTypeReal,
		},
		{
			name:     "integers with nulls",
			values:   []any{int64(1), nil, int64(3)},
			kind:     KindInteger,
			expected: ColumnTypeInteger,
		},
		{
			name:     "booleans",
			values:   []any{true, false, nil},
			kind:     KindBoolean,
			expected: ColumnTypeInteger,
		},
		{
			name:     "datetimes",
			values:   []any{day, nil, day.AddDate(0, 0, 1)},
			kind:     KindDatetime,
			expected: ColumnTypeText,
		},
		{
			name:     "durations",
			values:   []any{90 * time.Minute, 2 * time.Hour},
			kind:     KindDuration,
			expected: ColumnTypeText,
		},
		{
			name:     "strings",
			values:   []any{"hello", "world"},
			kind:     KindString,
			expected: ColumnTypeText,
		},
		{
			name:     "numbers and text",
			values:   []any{int64(123), "hello"},
			kind:     KindMixed,
			expected: ColumnTypeText,
		},
		{
			name:     "booleans and integers",
			values:   []any{true, int64(2)},
			kind:     KindMixed,
			expected: ColumnTypeText,
		},
		{
			name:     "only nulls",
			values:   []any{nil, nil},
			kind:     KindEmpty,
			expected: ColumnTypeText,
		},
		{
			name:     "no values",
			values:   nil,
			kind:     KindEmpty,
			expected: ColumnTypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.kind, InferValueKind(tt.values), "InferValueKind")
			assert.Equal(t, tt.expected, InferColumnType(tt.values), "InferColumnType")
		})
	}
}

func TestInferColumnsInfo(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"id", "price", "name", "active"})
	records := []Record{
		{int64(1), 9.5, "apple", true},
		{int64(2), int64(3), "pear", false},
		{int64(3)},
	}

	got := InferColumnsInfo(header, records)

	assert.Equal(t, []ColumnInfo{
		{Name: "id", Kind: KindInteger, Type: ColumnTypeInteger},
		{Name: "price", Kind: KindFloat, Type: ColumnTypeReal},
		{Name: "name", Kind: KindString, Type: ColumnTypeText},
		{Name: "active", Kind: KindBoolean, Type: ColumnTypeInteger},
	}, got)
}

func TestParseDatetime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{name: "date", input: "2024-01-15", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "datetime T", input: "2024-01-15T10:30:00", want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ok: true},
		{name: "datetime space", input: "2024-01-15 10:30:45", want: time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC), ok: true},
		{name: "utc", input: "2024-01-15T10:30:00Z", want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ok: true},
		{name: "not a date", input: "hello", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "invalid month", input: "2024-13-01", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseDatetime(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestParseColumnType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ColumnTypeInteger, ParseColumnType("INTEGER"))
	assert.Equal(t, ColumnTypeInteger, ParseColumnType("bigint"))
	assert.Equal(t, ColumnTypeReal, ParseColumnType("DOUBLE PRECISION"))
	assert.Equal(t, ColumnTypeReal, ParseColumnType("real"))
	assert.Equal(t, ColumnTypeText, ParseColumnType("VARCHAR(20)"))
	assert.Equal(t, ColumnTypeText, ParseColumnType(""))
}
