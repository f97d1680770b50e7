package sheetdb

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/driver"
)

const (
	// maxSheetNameLength is the longest sheet name a workbook accepts.
	maxSheetNameLength = 31
	// maxCellChars is the most characters a cell can hold.
	maxCellChars = 32767
	// maxColumnWidth caps automatic column widths.
	maxColumnWidth = 50
	// columnPadding is added to the longest value of a column.
	columnPadding = 2
	// headerFill is the background colour of header cells.
	headerFill = "4472C4"
)

// invalidSheetNameChars cannot appear in a sheet name.
var invalidSheetNameChars = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SheetWriter writes tables as worksheets of a new workbook.
type SheetWriter struct {
	path        string
	opts        options
	wb          *excelize.File
	headerStyle int
	defaultName string
	sheets      []string
	used        map[string]struct{}
}

// NewSheetWriter returns a writer that saves to path.
func NewSheetWriter(path string, opts ...Option) *SheetWriter {
	return &SheetWriter{
		path: path,
		opts: applyOptions(opts),
		used: make(map[string]struct{}),
	}
}

// Path returns the output path.
func (w *SheetWriter) Path() string {
	return w.path
}

// Sheets returns the names of the sheets written so far.
func (w *SheetWriter) Sheets() []string {
	return w.sheets
}

func (w *SheetWriter) workbook() (*excelize.File, error) {
	if w.wb != nil {
		return w.wb, nil
	}
	wb := excelize.NewFile()
	style, err := wb.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		_ = wb.Close()
		return nil, NewErrorContext("create workbook", w.path).StorageError(err)
	}
	w.wb = wb
	w.headerStyle = style
	w.defaultName = wb.GetSheetName(0)
	return wb, nil
}

// AddTable writes t to a new sheet named after the table and returns the
// sheet name. Names are cut to 31 characters and made unique.
func (w *SheetWriter) AddTable(t *model.Table) (string, error) {
	wb, err := w.workbook()
	if err != nil {
		return "", err
	}
	name := w.uniqueSheetName(t.Name())
	ec := NewErrorContext("write sheet", w.path).WithTable(name)

	if _, err := wb.NewSheet(name); err != nil {
		return "", ec.StorageError(err)
	}

	header := t.Header()
	widths := make([]int, len(header))
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := wb.SetSheetRow(name, "A1", &headerRow); err != nil {
		return "", ec.StorageError(err)
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return "", ec.StorageError(err)
		}
		if err := wb.SetCellStyle(name, "A1", last, w.headerStyle); err != nil {
			return "", ec.StorageError(err)
		}
	}

	for i, record := range t.Records() {
		row := make([]any, len(header))
		for j := range row {
			if j >= len(record) {
				continue
			}
			v := sheetValue(record[j])
			row[j] = v
			widths[j] = max(widths[j], displayWidth(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", ec.StorageError(err)
		}
		if err := wb.SetSheetRow(name, cell, &row); err != nil {
			return "", ec.StorageError(err)
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", ec.StorageError(err)
		}
		if err := wb.SetColWidth(name, col, col, float64(min(width+columnPadding, maxColumnWidth))); err != nil {
			return "", ec.StorageError(err)
		}
	}

	w.sheets = append(w.sheets, name)
	w.opts.logger.Debug("sheet written",
		zap.String("sheet", driver.SanitizeForLog(name)),
		zap.Int("rows", t.Len()))
	return name, nil
}

// Save writes the workbook to disk. The default empty sheet is removed when
// at least one table was written.
func (w *SheetWriter) Save() error {
	wb, err := w.workbook()
	if err != nil {
		return err
	}
	ec := NewErrorContext("save workbook", w.path)

	if len(w.sheets) > 0 {
		if _, kept := w.used[strings.ToLower(w.defaultName)]; !kept {
			if err := wb.DeleteSheet(w.defaultName); err != nil {
				return ec.StorageError(err)
			}
		}
		idx, err := wb.GetSheetIndex(w.sheets[0])
		if err != nil {
			return ec.StorageError(err)
		}
		wb.SetActiveSheet(idx)
	}

	if err := wb.SaveAs(w.path); err != nil {
		return ec.StorageError(err)
	}
	return nil
}

// FileSize returns the size of the saved workbook in bytes and in
// human-readable form. An unsaved workbook has size zero.
func (w *SheetWriter) FileSize() (int64, string) {
	info, err := os.Stat(w.path)
	if err != nil {
		return 0, model.FormatSize(0)
	}
	return info.Size(), model.FormatSize(info.Size())
}

// Close releases the workbook. It is safe to call more than once.
func (w *SheetWriter) Close() error {
	if w.wb == nil {
		return nil
	}
	err := w.wb.Close()
	w.wb = nil
	return err
}

// uniqueSheetName derives a valid, unused sheet name from a table name.
func (w *SheetWriter) uniqueSheetName(table string) string {
	base := strings.Trim(invalidSheetNameChars.Replace(table), "'")
	if strings.TrimSpace(base) == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, maxSheetNameLength)

	name := base
	for n := 2; ; n++ {
		if !w.taken(name) {
			break
		}
		suffix := fmt.Sprintf("_%d", n)
		name = truncateRunes(base, maxSheetNameLength-len(suffix)) + suffix
	}
	w.used[strings.ToLower(name)] = struct{}{}
	return name
}

// taken reports whether name clashes with a written sheet. A case variant of
// the default sheet is taken too, since it would silently reuse that sheet.
func (w *SheetWriter) taken(name string) bool {
	if _, ok := w.used[strings.ToLower(name)]; ok {
		return true
	}
	return w.defaultName != "" && name != w.defaultName && strings.EqualFold(name, w.defaultName)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// sheetValue converts a database value into something excelize can write.
func sheetValue(v any) any {
	switch tv := v.(type) {
	case []byte:
		return truncateRunes(string(tv), maxCellChars)
	case string:
		return truncateRunes(tv, maxCellChars)
	default:
		return v
	}
}

func displayWidth(v any) int {
	switch tv := v.(type) {
	case nil:
		return 0
	case string:
		return utf8.RuneCountInString(tv)
	case time.Time:
		return len(model.DatetimeLayout)
	default:
		return utf8.RuneCountInString(fmt.Sprint(tv))
	}
}
