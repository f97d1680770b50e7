package sheetdb

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/extrame/xls"

	"github.com/nao1215/sheetdb/domain/model"
)

// legacyCharset decodes the 8-bit strings of BIFF workbooks.
const legacyCharset = "utf-8"

// legacyWorkbook is a BIFF (.xls) workbook read into memory. The format only
// yields the display text of each cell, so values are recovered from text.
type legacyWorkbook struct {
	names []string
	rows  map[string][][]string
}

func openLegacyWorkbook(f *model.File) (lw *legacyWorkbook, err error) {
	data, err := readWorkbookBytes(f)
	if err != nil {
		return nil, err
	}

	// the BIFF decoder panics on some truncated records
	defer func() {
		if p := recover(); p != nil {
			lw, err = nil, fmt.Errorf("malformed xls workbook: %v", p)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), legacyCharset)
	if err != nil {
		return nil, err
	}

	lw = &legacyWorkbook{rows: make(map[string][][]string)}
	for i := range wb.NumSheets() {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		if _, dup := lw.rows[sheet.Name]; dup {
			continue
		}
		lw.names = append(lw.names, sheet.Name)
		lw.rows[sheet.Name] = legacySheetRows(sheet)
	}
	return lw, nil
}

func legacySheetRows(sheet *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, trimTrailingBlanks(cells))
	}
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func trimTrailingBlanks(cells []string) []string {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return cells[:n]
}

func readWorkbookBytes(f *model.File) ([]byte, error) {
	if !f.IsCompressed() {
		return os.ReadFile(f.Path()) //nolint:gosec // User-provided path is necessary for file operations
	}
	reader, cleanup, err := openDecompressed(f)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(reader)
	if cleanupErr := cleanup(); err == nil && cleanupErr != nil {
		err = cleanupErr
	}
	return data, err
}

// legacyCellValue recovers a typed value from the display text of a legacy
// cell: whole numbers, decimals, ISO dates and TRUE/FALSE. Anything else is
// kept as text.
func legacyCellValue(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if t, ok := model.ParseDatetime(s); ok {
		return t
	}
	switch s {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return raw
}
