package model

import "math"

// ColumnStat describes one column for display.
type ColumnStat struct {
	Name           string
	SourceType     string
	InferredType   ColumnType
	NonNullCount   int
	NullCount      int
	NullPercentage float64
	TotalRows      int
}

// ColumnStats computes per-column statistics over the whole table.
func ColumnStats(t *Table) []ColumnStat {
	total := t.Len()
	stats := make([]ColumnStat, 0, len(t.Header()))
	for i, info := range t.ColumnInfo() {
		nonNull := 0
		for _, record := range t.Records() {
			if i < len(record) && record[i] != nil {
				nonNull++
			}
		}

		nullPct := 0.0
		if total > 0 {
			nullPct = roundTo(float64(total-nonNull)/float64(total)*100, 2)
		}

		stats = append(stats, ColumnStat{
			Name:           info.Name,
			SourceType:     info.Kind.String(),
			InferredType:   info.Type,
			NonNullCount:   nonNull,
			NullCount:      total - nonNull,
			NullPercentage: nullPct,
			TotalRows:      total,
		})
	}
	return stats
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
