package sheetdb

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/driver"
)

// TableResult is the outcome of converting one sheet or exporting one table.
type TableResult struct {
	Source   string
	Target   string
	Rows     int
	Duration time.Duration
	Skipped  bool
	Err      error
}

// ConvertReport summarizes a workbook to database run.
type ConvertReport struct {
	Source      string
	Destination string
	Tables      []TableResult
	Duration    time.Duration
}

// Converted returns the number of sheets written to the database.
func (r *ConvertReport) Converted() int {
	n := 0
	for _, t := range r.Tables {
		if !t.Skipped && t.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of sheets that failed.
func (r *ConvertReport) Failed() int {
	n := 0
	for _, t := range r.Tables {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// TotalRows returns the number of rows written.
func (r *ConvertReport) TotalRows() int {
	n := 0
	for _, t := range r.Tables {
		if t.Err == nil {
			n += t.Rows
		}
	}
	return n
}

// Converter copies worksheets into database tables.
type Converter struct {
	resolver Resolver
	opts     options
}

// NewConverter returns a converter that asks resolver about tables that
// already exist.
func NewConverter(resolver Resolver, opts ...Option) *Converter {
	return &Converter{resolver: resolver, opts: applyOptions(opts)}
}

// Convert writes each described sheet into its table, in order. A sheet
// that fails is logged and recorded in the report, and the run continues.
// When the resolver cancels, or ctx is canceled, Convert stops and returns
// the report so far with ErrCanceled; tables already written stay committed.
func (c *Converter) Convert(ctx context.Context, reader *SheetReader, store *Store, sheets []*model.SheetDescriptor) (*ConvertReport, error) {
	report := &ConvertReport{Source: reader.Path(), Destination: store.Path()}
	started := time.Now()
	defer func() { report.Duration = time.Since(started) }()

	for _, sheet := range sheets {
		if ctx.Err() != nil {
			return report, ErrCanceled
		}

		result, err := c.convertSheet(ctx, reader, store, sheet)
		if err != nil {
			if IsCanceled(err) {
				return report, ErrCanceled
			}
			result.Err = err
			c.opts.logger.Error("sheet conversion failed",
				zap.String("context", "convert_sheet"),
				zap.String("sheet", driver.SanitizeForLog(sheet.SheetName)),
				zap.String("table", result.Target),
				zap.Error(err))
		}
		report.Tables = append(report.Tables, result)
	}
	return report, nil
}

func (c *Converter) convertSheet(ctx context.Context, reader *SheetReader, store *Store, sheet *model.SheetDescriptor) (TableResult, error) {
	result := TableResult{Source: sheet.SheetName, Target: sheet.TableName}
	started := time.Now()

	target, policy, ok, err := c.resolveTable(ctx, store, sheet.TableName)
	result.Target = target
	if err != nil {
		return result, err
	}
	if !ok {
		result.Skipped = true
		c.opts.logger.Info("table skipped", zap.String("table", target))
		return result, nil
	}

	table, err := reader.ReadSheet(ctx, sheet.SheetName, 0)
	if err != nil {
		return result, err
	}
	if len(table.Header()) == 0 {
		result.Skipped = true
		c.opts.logger.Info("empty sheet skipped", zap.String("sheet", driver.SanitizeForLog(sheet.SheetName)))
		return result, nil
	}
	rows, err := store.InsertRows(ctx, table, target, policy, c.opts.batchSize)
	if err != nil {
		return result, err
	}

	result.Rows = rows
	result.Duration = time.Since(started)
	c.opts.logger.Info("table converted",
		zap.String("sheet", driver.SanitizeForLog(sheet.SheetName)),
		zap.String("table", target),
		zap.String("policy", policy.String()),
		zap.Int("rows", rows),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// resolveTable runs the conflict state machine for a table. The boolean is
// false when the table should be skipped.
func (c *Converter) resolveTable(ctx context.Context, store *Store, name string) (string, model.ConflictPolicy, bool, error) {
	for range maxRenames {
		exists, err := store.TableExists(ctx, name)
		if err != nil {
			return name, model.PolicyFail, false, err
		}
		if !exists {
			return name, model.PolicyFail, true, nil
		}

		rows, err := store.RowCount(ctx, name)
		if err != nil {
			return name, model.PolicyFail, false, err
		}
		decision, err := c.resolver.Resolve(ctx, Conflict{
			Scope:        model.ScopeTable,
			Name:         name,
			ExistingRows: rows,
			Database:     store.Path(),
		})
		if err != nil {
			return name, model.PolicyFail, false, err
		}

		resolution := model.NewResolution(model.ScopeTable, name)
		state, err := resolution.Apply(decision)
		if err != nil {
			return name, model.PolicyFail, false, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		switch state {
		case model.StateCancel:
			return name, model.PolicyFail, false, ErrCanceled
		case model.StateRename:
			name = model.NormalizeTableName(resolution.Target())
			continue
		}
		policy, ok := resolution.Policy()
		return name, policy, ok, nil
	}
	return name, model.PolicyFail, false, fmt.Errorf("%w: too many renames onto existing tables", ErrValidation)
}
