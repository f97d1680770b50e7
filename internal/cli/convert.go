package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nao1215/sheetdb"
	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/internal/logging"
)

type convertOptions struct {
	file      string
	database  string
	sheets    []string
	batchSize int
	conflicts conflictFlags
}

func (a *app) newConvertCmd() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a workbook into a SQLite database",
		Long: `Convert every selected sheet of a workbook into a table of a SQLite
database. Missing paths are asked for interactively unless --yes is given.
A bare database name is created next to the workbook.`,
		Example: `  sheetdb convert
  sheetdb convert -f sales.xlsx -d sales.db -y
  sheetdb convert -f sales.xlsx.gz -s Clients -s Orders --on-table-exists overwrite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLogger("convert", func(logger *zap.Logger) error {
				return a.convert(cmd.Context(), logger, opts)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "workbook to convert (.xlsx, .xlsm, .xls, optionally .gz/.bz2/.xz/.zst)")
	flags.StringVarP(&opts.database, "database", "d", "", "destination database (default: workbook name with .db)")
	flags.StringArrayVarP(&opts.sheets, "sheet", "s", nil, "sheet to convert; repeat for several (default: all)")
	flags.BoolVarP(&opts.conflicts.yes, "yes", "y", false, "accept every default without prompting")
	flags.StringVar(&opts.conflicts.database, "on-db-exists", "", "existing database: use, overwrite or cancel")
	flags.StringVar(&opts.conflicts.table, "on-table-exists", "", "existing table: append, overwrite, skip or cancel")
	flags.IntVar(&opts.batchSize, "batch-size", a.cfg.BatchSize, "rows per insert batch (env SHEETDB_BATCH_SIZE)")
	return cmd
}

func (a *app) convert(ctx context.Context, logger *zap.Logger, opts *convertOptions) error {
	d := a.display()
	p := newPrompter(a.in, a.out)
	resolver, err := opts.conflicts.resolver(p)
	if err != nil {
		return err
	}
	libOpts := []sheetdb.Option{
		sheetdb.WithLogger(logger),
		sheetdb.WithBatchSize(opts.batchSize),
		sheetdb.WithPreviewRows(a.cfg.PreviewRows),
	}

	source := opts.file
	if source == "" {
		if opts.conflicts.yes {
			return fmt.Errorf("%w: --file is required with --yes", sheetdb.ErrValidation)
		}
		if source, err = p.AskRequired(ctx, "Workbook path"); err != nil {
			return err
		}
	}

	reader, err := sheetdb.NewSheetReader(source, libOpts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	d.Title("Analysing %s", source)
	sheets, err := reader.DescribeAllSheets(ctx)
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		return fmt.Errorf("%w: no readable sheet in %s", sheetdb.ErrValidation, source)
	}
	d.Success("%d sheet(s) found", len(sheets))
	d.Sheets(sheets)

	name := opts.database
	if name == "" {
		name = reader.Stem() + model.ExtDB
		if !opts.conflicts.yes {
			if name, err = p.Ask(ctx, "Database name", name); err != nil {
				return err
			}
		}
	}
	target, err := sheetdb.ResolveDestination(ctx, placeBeside(name, filepath.Dir(source), model.ExtDB), model.ScopeDatabase, resolver, logger)
	if err != nil {
		return err
	}
	d.Info("Database: %s", target)

	selected, err := selectSheets(ctx, p, d, sheets, opts)
	if err != nil {
		return err
	}
	d.Success("%d sheet(s) selected", len(selected))

	logging.ConversionStart(logger, "convert", source, target)
	d.Title("Converting")

	var report *sheetdb.ConvertReport
	var size string
	err = sheetdb.WithStore(ctx, target, func(ctx context.Context, store *sheetdb.Store) error {
		var convErr error
		report, convErr = sheetdb.NewConverter(resolver, libOpts...).Convert(ctx, reader, store, selected)
		_, size = store.DatabaseSize()
		return convErr
	}, libOpts...)
	if report != nil {
		for _, t := range report.Tables {
			switch {
			case t.Err != nil:
				logging.Warning(logger, "sheet not converted", zap.String("sheet", t.Source), zap.Error(t.Err))
			case !t.Skipped:
				logging.TableSuccess(logger, t.Target, t.Rows, t.Duration)
			}
		}
		logging.RunSummary(logger, target, report.Converted(), report.TotalRows(), report.Duration)
		d.ConvertSummary(report, size, a.cfg.LogFile)
	}
	if err != nil {
		return err
	}
	if report.Converted() == 0 && report.Failed() > 0 {
		return fmt.Errorf("%w: no sheet could be converted", sheetdb.ErrStorage)
	}
	return nil
}

// selectSheets applies --sheet, or asks which sheets to convert. With --yes
// every sheet is converted.
func selectSheets(ctx context.Context, p *prompter, d *display, sheets []*model.SheetDescriptor, opts *convertOptions) ([]*model.SheetDescriptor, error) {
	if len(opts.sheets) > 0 {
		var (
			selected []*model.SheetDescriptor
			missing  []error
		)
		for _, name := range opts.sheets {
			i := slices.IndexFunc(sheets, func(s *model.SheetDescriptor) bool { return s.SheetName == name })
			if i < 0 {
				missing = append(missing, fmt.Errorf("%w: %q", sheetdb.ErrSheetNotFound, name))
				continue
			}
			selected = append(selected, sheets[i])
		}
		if len(missing) > 0 {
			return nil, errors.Join(missing...)
		}
		return selected, nil
	}
	if opts.conflicts.yes {
		return sheets, nil
	}

	for _, s := range sheets {
		d.Preview(s)
	}
	indices, err := p.SelectIndices(ctx, "Sheets to convert", len(sheets))
	if err != nil {
		return nil, err
	}
	selected := make([]*model.SheetDescriptor, len(indices))
	for i, idx := range indices {
		selected[i] = sheets[idx]
	}
	return selected, nil
}
