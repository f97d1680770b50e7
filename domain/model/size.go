package model

import "fmt"

const (
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
)

// FormatSize renders a byte count with B, KB, MB or GB units.
//
//	FormatSize(500)     // "500 B"
//	FormatSize(2048)    // "2.00 KB"
//	FormatSize(5242880) // "5.00 MB"
func FormatSize(bytes int64) string {
	switch {
	case bytes < kib:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mib:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kib)
	case bytes < gib:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mib)
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gib)
	}
}
