package sheetdb

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/driver"
)

// ExportReport summarizes a database to workbook run.
type ExportReport struct {
	Source      string
	Destination string
	Tables      []TableResult
	Duration    time.Duration
}

// Exported returns the number of tables written as sheets.
func (r *ExportReport) Exported() int {
	n := 0
	for _, t := range r.Tables {
		if t.Err == nil {
			n++
		}
	}
	return n
}

// TotalRows returns the number of rows written.
func (r *ExportReport) TotalRows() int {
	n := 0
	for _, t := range r.Tables {
		if t.Err == nil {
			n += t.Rows
		}
	}
	return n
}

// Exporter copies database tables into worksheets.
type Exporter struct {
	opts options
}

// NewExporter returns an exporter.
func NewExporter(opts ...Option) *Exporter {
	return &Exporter{opts: applyOptions(opts)}
}

// Export writes each table to its own sheet and saves the workbook. A table
// that fails is logged and recorded, and the run continues. Nothing is saved
// when ctx is canceled.
func (e *Exporter) Export(ctx context.Context, reader *TableReader, writer *SheetWriter, tables []*model.TableDescriptor) (*ExportReport, error) {
	report := &ExportReport{Source: reader.Path(), Destination: writer.Path()}
	started := time.Now()
	defer func() { report.Duration = time.Since(started) }()

	for _, table := range tables {
		if ctx.Err() != nil {
			return report, ErrCanceled
		}

		tableStarted := time.Now()
		result := TableResult{Source: table.Name}
		t, err := reader.ReadTable(ctx, table.Name)
		if err == nil {
			result.Target, err = writer.AddTable(t)
		}
		if err != nil {
			if IsCanceled(err) {
				return report, ErrCanceled
			}
			result.Err = err
			e.opts.logger.Error("table export failed",
				zap.String("context", "export_table"),
				zap.String("table", driver.SanitizeForLog(table.Name)),
				zap.Error(err))
			report.Tables = append(report.Tables, result)
			continue
		}

		result.Rows = t.Len()
		result.Duration = time.Since(tableStarted)
		report.Tables = append(report.Tables, result)
		e.opts.logger.Info("table exported",
			zap.String("table", driver.SanitizeForLog(table.Name)),
			zap.String("sheet", driver.SanitizeForLog(result.Target)),
			zap.Int("rows", result.Rows),
			zap.Duration("duration", result.Duration))
	}

	if err := writer.Save(); err != nil {
		return report, err
	}
	return report, nil
}
