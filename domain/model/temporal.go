package model

import (
	"fmt"
	"time"
)

// DatetimeLayout is the text form temporal values take in the database.
const DatetimeLayout = "2006-01-02 15:04:05"

// FormatDatetime renders t as "YYYY-MM-DD HH:MM:SS".
func FormatDatetime(t time.Time) string {
	return t.Format(DatetimeLayout)
}

// FormatDuration renders d as "HH:MM:SS". Hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

// NormalizeTemporal returns a copy of records in which every time.Time and
// time.Duration cell is replaced by its text form. Null cells stay null.
// The input is not modified, and applying the transform to its own output
// returns equal records.
func NormalizeTemporal(records []Record) []Record {
	out := make([]Record, len(records))
	for i, record := range records {
		row := make(Record, len(record))
		for j, v := range record {
			row[j] = temporalText(v)
		}
		out[i] = row
	}
	return out
}

func temporalText(v any) any {
	switch tv := v.(type) {
	case time.Time:
		if tv.IsZero() {
			return nil
		}
		return FormatDatetime(tv)
	case *time.Time:
		if tv == nil || tv.IsZero() {
			return nil
		}
		return FormatDatetime(*tv)
	case time.Duration:
		return FormatDuration(tv)
	default:
		return v
	}
}

// SQLValue converts a cell into a value the SQLite driver binds directly:
// booleans become 0/1, temporal values become text, and integers widen to
// int64.
func SQLValue(v any) any {
	switch tv := v.(type) {
	case bool:
		if tv {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(tv)
	case int8:
		return int64(tv)
	case int16:
		return int64(tv)
	case int32:
		return int64(tv)
	case uint8:
		return int64(tv)
	case uint16:
		return int64(tv)
	case uint32:
		return int64(tv)
	case float32:
		return float64(tv)
	default:
		return temporalText(v)
	}
}
