package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// UnnamedColumn replaces a column label that normalizes to nothing.
	UnnamedColumn = "unnamed_column"
	// UnnamedTable replaces a sheet or table label that normalizes to nothing.
	UnnamedTable = "unnamed_table"
	// digitPrefix is prepended to identifiers that would start with a digit.
	digitPrefix = "col_"
	// separator joins the words of an identifier.
	separator = '_'
)

// ligatures are Latin letters that canonical decomposition leaves intact.
var ligatures = strings.NewReplacer(
	"œ", "oe", "Œ", "OE",
	"æ", "ae", "Æ", "AE",
	"ß", "ss", "ẞ", "SS",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"þ", "th", "Þ", "TH",
)

// foldAccents strips combining marks, so "é" becomes "e".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return ligatures.Replace(folded)
}

// normalizeIdentifier implements the shared part of column and table name
// normalization. The result only contains [a-z0-9_].
func normalizeIdentifier(raw, placeholder string) string {
	s := strings.ToLower(foldAccents(strings.TrimSpace(raw)))

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteRune(separator)
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	result := b.String()
	if result == "" {
		return placeholder
	}
	if result[0] >= '0' && result[0] <= '9' {
		return digitPrefix + result
	}
	return result
}

// NormalizeColumnName turns a raw header label into a SQL-safe identifier.
//
//	NormalizeColumnName("Prénom Client ") // "prenom_client"
//	NormalizeColumnName("2024 total")     // "col_2024_total"
//	NormalizeColumnName("  ")             // "unnamed_column"
func NormalizeColumnName(raw string) string {
	return normalizeIdentifier(raw, UnnamedColumn)
}

// NormalizeTableName turns a sheet or table label into a SQL-safe identifier.
func NormalizeTableName(raw string) string {
	return normalizeIdentifier(raw, UnnamedTable)
}

// DeduplicateNames makes names unique by suffixing repeats with _2, _3, ...
// The first occurrence of every name is kept unchanged, and a suffixed
// candidate never collides with a name that appears anywhere in the input.
func DeduplicateNames(names []string) []string {
	reserved := make(map[string]struct{}, len(names))
	for _, n := range names {
		reserved[n] = struct{}{}
	}

	used := make(map[string]struct{}, len(names))
	next := make(map[string]int)
	out := make([]string, len(names))
	for i, n := range names {
		if _, dup := used[n]; !dup {
			used[n] = struct{}{}
			out[i] = n
			continue
		}

		suffix := max(next[n], 2)
		for {
			candidate := fmt.Sprintf("%s_%d", n, suffix)
			_, taken := used[candidate]
			_, inInput := reserved[candidate]
			if !taken && !inInput {
				out[i] = candidate
				used[candidate] = struct{}{}
				break
			}
			suffix++
		}
		next[n] = suffix + 1
	}
	return out
}

// NormalizeHeader normalizes every label and then deduplicates the result.
func NormalizeHeader(raw []string) Header {
	names := make([]string, len(raw))
	for i, r := range raw {
		names[i] = NormalizeColumnName(r)
	}
	return NewHeader(DeduplicateNames(names))
}

// HeaderText renders a decoded header cell as a label. Dates and durations
// use their storage form, so a date header reads "2024-01-01 00:00:00"
// rather than a serial number.
func HeaderText(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case time.Time:
		return FormatDatetime(tv)
	case time.Duration:
		return FormatDuration(tv)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	default:
		return fmt.Sprint(tv)
	}
}
