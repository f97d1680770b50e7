package sheetdb

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/driver"
)

// SheetReader reads worksheets from a workbook. The workbook is opened on
// first use; call Close when done.
type SheetReader struct {
	file     *model.File
	opts     options
	wb       *excelize.File
	legacy   *legacyWorkbook
	date1904 bool
	// formats caches the number-format class of each style ID.
	formats map[int]numberFormat
}

// NewSheetReader returns a reader for the workbook at path. It fails with
// ErrFileNotFound when the file does not exist and ErrUnsupportedFormat when
// the extension is not a workbook extension. Compressed workbooks
// (.xlsx.gz, .xlsx.bz2, .xlsx.xz, .xlsx.zst) and legacy .xls files are
// accepted.
func NewSheetReader(path string, opts ...Option) (*SheetReader, error) {
	f, err := newValidator().validateWorkbook(path)
	if err != nil {
		return nil, err
	}
	return &SheetReader{
		file:    f,
		opts:    applyOptions(opts),
		formats: make(map[int]numberFormat),
	}, nil
}

// Path returns the workbook path.
func (r *SheetReader) Path() string {
	return r.file.Path()
}

// Stem returns the workbook file name without extensions.
func (r *SheetReader) Stem() string {
	return r.file.Stem()
}

// open loads the workbook on first use. Legacy .xls files are decoded
// eagerly into a legacyWorkbook; everything else goes through excelize.
func (r *SheetReader) open() error {
	if r.wb != nil || r.legacy != nil {
		return nil
	}

	ec := NewErrorContext("open workbook", r.file.Path())
	if r.file.Type() == model.FileTypeXLS {
		legacy, err := openLegacyWorkbook(r.file)
		if err != nil {
			return ec.StorageError(err)
		}
		r.legacy = legacy
		r.opts.logger.Debug("legacy workbook opened", zap.String("path", r.file.Path()))
		return nil
	}

	var (
		wb  *excelize.File
		err error
	)
	if r.file.IsCompressed() {
		reader, cleanup, openErr := openDecompressed(r.file)
		if openErr != nil {
			return ec.StorageError(openErr)
		}
		wb, err = excelize.OpenReader(reader)
		if cleanupErr := cleanup(); err == nil && cleanupErr != nil {
			err = cleanupErr
		}
	} else {
		wb, err = excelize.OpenFile(r.file.Path())
	}
	if err != nil {
		return ec.StorageError(err)
	}

	if props, err := wb.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	r.wb = wb
	r.opts.logger.Debug("workbook opened", zap.String("path", r.file.Path()))
	return nil
}

// Close releases the workbook. It is safe to call more than once.
func (r *SheetReader) Close() error {
	r.legacy = nil
	if r.wb == nil {
		return nil
	}
	err := r.wb.Close()
	r.wb = nil
	return err
}

// ListSheets returns the sheet names in workbook order.
func (r *SheetReader) ListSheets(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	if r.legacy != nil {
		return slices.Clone(r.legacy.names), nil
	}
	return r.wb.GetSheetList(), nil
}

// cellDecoder turns the raw text of the cell at 1-based col and row into a
// typed value.
type cellDecoder func(col, row int, raw string) (any, error)

// ReadSheet reads a sheet into a table. The first non-empty row is the
// header; its labels are normalized and deduplicated. rowLimit <= 0 reads
// every row. Trailing empty rows are dropped.
func (r *SheetReader) ReadSheet(ctx context.Context, name string, rowLimit int) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.open(); err != nil {
		return nil, err
	}

	var (
		rows   [][]string
		decode cellDecoder
	)
	if r.legacy != nil {
		legacyRows, ok := r.legacy.rows[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, name, r.file.Path())
		}
		rows = legacyRows
		decode = func(_, _ int, raw string) (any, error) { return legacyCellValue(raw), nil }
	} else {
		if !slices.Contains(r.wb.GetSheetList(), name) {
			return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, name, r.file.Path())
		}
		var err error
		rows, err = r.wb.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, NewErrorContext("read sheet", r.file.Path()).WithTable(name).StorageError(err)
		}
		decode = func(col, row int, raw string) (any, error) {
			return r.cellValue(r.wb, name, col, row, raw)
		}
	}

	t, err := buildTable(name, rows, rowLimit, decode)
	if err != nil {
		return nil, NewErrorContext("read sheet", r.file.Path()).WithTable(name).StorageError(err)
	}
	return t, nil
}

// buildTable assembles a table from the text rows of a sheet. Header cells
// are decoded like any other cell and then rendered as labels.
func buildTable(name string, rows [][]string, rowLimit int, decode cellDecoder) (*model.Table, error) {
	headerIdx := slices.IndexFunc(rows, func(row []string) bool { return !isBlankRow(row) })
	if headerIdx < 0 {
		return model.NewTable(name, model.Header{}, nil), nil
	}

	width := 0
	for _, row := range rows[headerIdx:] {
		width = max(width, len(row))
	}
	rawHeader := make([]string, width)
	for c, raw := range rows[headerIdx] {
		v, err := decode(c+1, headerIdx+1, raw)
		if err != nil {
			return nil, err
		}
		rawHeader[c] = model.HeaderText(v)
	}
	header := model.NormalizeHeader(rawHeader)

	records := make([]model.Record, 0, len(rows)-headerIdx-1)
	for i := headerIdx + 1; i < len(rows); i++ {
		if rowLimit > 0 && len(records) >= rowLimit {
			break
		}
		record := make(model.Record, width)
		for c, raw := range rows[i] {
			v, err := decode(c+1, i+1, raw)
			if err != nil {
				return nil, err
			}
			record[c] = v
		}
		records = append(records, record)
	}
	for len(records) > 0 && records[len(records)-1].IsEmpty() {
		records = records[:len(records)-1]
	}

	return model.NewTable(name, header, records), nil
}

// DescribeSheet reads the whole sheet and summarizes it.
func (r *SheetReader) DescribeSheet(ctx context.Context, name string) (*model.SheetDescriptor, error) {
	t, err := r.ReadSheet(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	return model.NewSheetDescriptor(name, t, r.opts.previewRows), nil
}

// DescribeAllSheets describes every sheet. A sheet that cannot be read is
// logged and left out. Table names are made unique across the workbook.
func (r *SheetReader) DescribeAllSheets(ctx context.Context) ([]*model.SheetDescriptor, error) {
	sheets, err := r.ListSheets(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]*model.SheetDescriptor, 0, len(sheets))
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return descriptors, err
		}
		d, err := r.DescribeSheet(ctx, sheet)
		if err != nil {
			r.opts.logger.Error("failed to describe sheet",
				zap.String("context", "describe_sheet"),
				zap.String("sheet", driver.SanitizeForLog(sheet)),
				zap.Error(err))
			continue
		}
		descriptors = append(descriptors, d)
	}

	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.TableName
	}
	for i, name := range model.DeduplicateNames(names) {
		descriptors[i].TableName = name
	}
	return descriptors, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cellValue decodes a raw cell value using the cell type and number format.
func (r *SheetReader) cellValue(wb *excelize.File, sheet string, col, row int, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	cellType, err := wb.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeDate:
		if t, ok := model.ParseDatetime(raw); ok {
			return t, nil
		}
		return raw, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return raw, nil
	default:
		return r.numericValue(wb, sheet, cell, raw)
	}
}

func (r *SheetReader) numericValue(wb *excelize.File, sheet, cell, raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, nil
	}

	format, err := r.numberFormat(wb, sheet, cell)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatDate:
		if t, err := excelize.ExcelDateToTime(f, r.date1904); err == nil {
			return t, nil
		}
	case formatDuration:
		return time.Duration(math.Round(f*secondsPerDay)) * time.Second, nil
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i, nil
	}
	return f, nil
}

func (r *SheetReader) numberFormat(wb *excelize.File, sheet, cell string) (numberFormat, error) {
	styleID, err := wb.GetCellStyle(sheet, cell)
	if err != nil {
		return formatGeneral, err
	}
	if f, ok := r.formats[styleID]; ok {
		return f, nil
	}

	style, err := wb.GetStyle(styleID)
	if err != nil {
		return formatGeneral, err
	}
	f := classifyNumberFormat(style.NumFmt, style.CustomNumFmt)
	r.formats[styleID] = f
	return f, nil
}

const secondsPerDay = 24 * 60 * 60

// numberFormat is how a numeric cell should be interpreted.
type numberFormat int

const (
	formatGeneral numberFormat = iota
	formatDate
	formatDuration
)

// Built-in number format IDs (ECMA-376 18.8.30) that display dates, and those
// that display elapsed time or a time of day.
var (
	builtinDateFormats     = []int{14, 15, 16, 17, 22, 27, 28, 29, 30, 31, 32, 33, 34, 35, 36, 50, 51, 52, 53, 54, 55, 56, 57, 58}
	builtinDurationFormats = []int{18, 19, 20, 21, 45, 46, 47}
)

func classifyNumberFormat(id int, custom *string) numberFormat {
	switch {
	case slices.Contains(builtinDateFormats, id):
		return formatDate
	case slices.Contains(builtinDurationFormats, id):
		return formatDuration
	case custom != nil:
		return classifyFormatCode(*custom)
	default:
		return formatGeneral
	}
}

// classifyFormatCode inspects the first section of a format code. Quoted
// text, escaped characters and bracketed modifiers such as colours and
// locales are ignored; [h], [m] and [s] mark elapsed time.
func classifyFormatCode(code string) numberFormat {
	section, _, _ := strings.Cut(code, ";")

	var tokens strings.Builder
	elapsed := false
	for i := 0; i < len(section); i++ {
		c := section[i]
		switch c {
		case '"':
			end := strings.IndexByte(section[i+1:], '"')
			if end < 0 {
				i = len(section)
				continue
			}
			i += end + 1
		case '\\', '_', '*':
			i++
		case '[':
			end := strings.IndexByte(section[i:], ']')
			if end < 0 {
				i = len(section)
				continue
			}
			inner := strings.ToLower(section[i+1 : i+end])
			if inner != "" && strings.Trim(inner, "hms") == "" {
				elapsed = true
			}
			i += end
		default:
			if c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
			tokens.WriteByte(c)
		}
	}

	s := tokens.String()
	switch {
	case elapsed:
		return formatDuration
	case strings.ContainsAny(s, "dy"):
		return formatDate
	case strings.ContainsAny(s, "hs"):
		return formatDuration
	case strings.Contains(s, "m"):
		return formatDate
	default:
		return formatGeneral
	}
}
