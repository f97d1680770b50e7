package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "zero", in: 0, want: "00:00:00"},
		{name: "minutes", in: 90 * time.Minute, want: "01:30:00"},
		{name: "past a day", in: 26*time.Hour + 3*time.Minute + 4*time.Second, want: "26:03:04"},
		{name: "rounds to seconds", in: 1500 * time.Millisecond, want: "00:00:02"},
		{name: "negative", in: -(2*time.Hour + 5*time.Second), want: "-02:00:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestNormalizeTemporal(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 17, 8, 9, 10, 0, time.UTC)
	records := []Record{
		{int64(1), ts, 45 * time.Minute, "x"},
		{int64(2), nil, nil, nil},
		{int64(3), time.Time{}, time.Duration(0), true},
	}

	got := NormalizeTemporal(records)

	require.Len(t, got, 3)
	assert.Equal(t, Record{int64(1), "2024-05-17 08:09:10", "00:45:00", "x"}, got[0])
	assert.Equal(t, Record{int64(2), nil, nil, nil}, got[1])
	assert.Equal(t, Record{int64(3), nil, "00:00:00", true}, got[2])

	t.Run("input is not modified", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, ts, records[0][1])
		assert.Equal(t, 45*time.Minute, records[0][2])
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, got, NormalizeTemporal(got))
	})
}

func TestSQLValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1), SQLValue(true))
	assert.Equal(t, int64(0), SQLValue(false))
	assert.Equal(t, int64(7), SQLValue(7))
	assert.Equal(t, int64(7), SQLValue(int32(7)))
	assert.Equal(t, 1.5, SQLValue(1.5))
	assert.Equal(t, "2024-01-02 03:04:05", SQLValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, "00:01:00", SQLValue(time.Minute))
	assert.Nil(t, SQLValue(nil))
	assert.Equal(t, "text", SQLValue("text"))
}
