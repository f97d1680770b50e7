package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/nao1215/sheetdb"
	"github.com/nao1215/sheetdb/domain/model"
)

// display writes user-facing console output.
type display struct {
	out     io.Writer
	errOut  io.Writer
	title   *color.Color
	success *color.Color
	info    *color.Color
	warn    *color.Color
	failure *color.Color
	dim     *color.Color
}

func newDisplay(out, errOut io.Writer, noColor bool) *display {
	d := &display{
		out:     out,
		errOut:  errOut,
		title:   color.New(color.FgCyan, color.Bold),
		success: color.New(color.FgGreen),
		info:    color.New(color.FgBlue),
		warn:    color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{d.title, d.success, d.info, d.warn, d.failure, d.dim} {
			c.DisableColor()
		}
	}
	return d
}

func (d *display) Title(format string, a ...any) {
	_, _ = d.title.Fprintf(d.out, "\n"+format+"\n\n", a...)
}

func (d *display) Success(format string, a ...any) {
	_, _ = d.success.Fprintf(d.out, "✓ "+format+"\n", a...)
}

func (d *display) Info(format string, a ...any) {
	_, _ = d.info.Fprintf(d.out, "ℹ "+format+"\n", a...)
}

func (d *display) Warn(format string, a ...any) {
	_, _ = d.warn.Fprintf(d.out, "⚠ "+format+"\n", a...)
}

// Error prints a diagnostic to the error stream.
func (d *display) Error(err error) {
	_, _ = d.failure.Fprintf(d.errOut, "Error: %v\n", err)
}

// Sheets lists the described sheets with their index, size and target table.
func (d *display) Sheets(sheets []*model.SheetDescriptor) {
	tw := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tSheet\tRows\tColumns\tTable")
	for i, s := range sheets {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", i+1, s.SheetName, humanize.Comma(int64(s.Rows)), s.ColumnCount(), s.TableName)
	}
	_ = tw.Flush()
}

// Preview prints the column types of a sheet and its first rows.
func (d *display) Preview(s *model.SheetDescriptor) {
	_, _ = d.title.Fprintf(d.out, "\n%s\n", s.SheetName)
	tw := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Column\tDetected\tStorage\tNulls")
	for _, st := range s.Stats {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f%%\n", st.Name, st.SourceType, st.InferredType, st.NullPercentage)
	}
	_ = tw.Flush()

	if s.Preview == nil || s.Preview.Len() == 0 {
		return
	}
	tw = tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(s.Preview.Header(), "\t"))
	for _, record := range s.Preview.Records() {
		cells := make([]string, len(record))
		for i, v := range record {
			cells[i] = previewCell(v)
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

func previewCell(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case time.Time:
		return model.FormatDatetime(tv)
	case time.Duration:
		return model.FormatDuration(tv)
	default:
		return fmt.Sprint(tv)
	}
}

// Tables lists the described database tables.
func (d *display) Tables(tables []*model.TableDescriptor) {
	tw := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tTable\tRows\tColumns")
	for i, t := range tables {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, t.Name, humanize.Comma(int64(t.Rows)), t.ColumnCount())
	}
	_ = tw.Flush()
}

// ConvertSummary prints the outcome of a workbook to database run.
func (d *display) ConvertSummary(r *sheetdb.ConvertReport, size, logFile string) {
	d.Title("Conversion summary")
	for _, t := range r.Tables {
		switch {
		case t.Err != nil:
			_, _ = d.failure.Fprintf(d.out, "✗ %s: %v\n", t.Source, t.Err)
		case t.Skipped:
			_, _ = d.dim.Fprintf(d.out, "- %s skipped\n", t.Source)
		default:
			d.Success("%s → %s (%s rows, %s)", t.Source, t.Target, humanize.Comma(int64(t.Rows)), t.Duration.Round(time.Millisecond))
		}
	}
	_, _ = fmt.Fprintf(d.out, "\nDatabase:   %s\n", r.Destination)
	_, _ = fmt.Fprintf(d.out, "Tables:     %d\n", r.Converted())
	_, _ = fmt.Fprintf(d.out, "Rows:       %s\n", humanize.Comma(int64(r.TotalRows())))
	_, _ = fmt.Fprintf(d.out, "Duration:   %s\n", r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(d.out, "Size:       %s\n", size)
	_, _ = d.dim.Fprintf(d.out, "Log:        %s\n", logFile)
}

// ExportSummary prints the outcome of a database to workbook run.
func (d *display) ExportSummary(r *sheetdb.ExportReport, size, logFile string) {
	d.Title("Export summary")
	for _, t := range r.Tables {
		if t.Err != nil {
			_, _ = d.failure.Fprintf(d.out, "✗ %s: %v\n", t.Source, t.Err)
			continue
		}
		d.Success("%s → sheet %s (%s rows)", t.Source, t.Target, humanize.Comma(int64(t.Rows)))
	}
	_, _ = fmt.Fprintf(d.out, "\nWorkbook:   %s\n", r.Destination)
	_, _ = fmt.Fprintf(d.out, "Size:       %s\n", size)
	_, _ = fmt.Fprintf(d.out, "Sheets:     %d\n", r.Exported())
	_, _ = fmt.Fprintf(d.out, "Rows:       %s\n", humanize.Comma(int64(r.TotalRows())))
	_, _ = fmt.Fprintf(d.out, "Duration:   %s\n", r.Duration.Round(time.Millisecond))
	_, _ = d.dim.Fprintf(d.out, "Log:        %s\n", logFile)
}

// DatabaseStats prints per-table counts and the file size.
func (d *display) DatabaseStats(s *model.DatabaseStats) {
	d.Title("%s", s.Path)
	tw := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Table\tRows\tColumns")
	for _, t := range s.Tables {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", t.Name, humanize.Comma(int64(t.Rows)), t.Columns)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(d.out, "\nTables: %d  Rows: %s  Size: %s\n", s.TableCount, humanize.Comma(int64(s.TotalRows)), s.SizeFormatted)
}
