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

type reverseOptions struct {
	database  string
	output    string
	tables    []string
	conflicts conflictFlags
}

func (a *app) newReverseCmd() *cobra.Command {
	opts := &reverseOptions{}
	cmd := &cobra.Command{
		Use:   "reverse",
		Short: "Export SQLite tables into a workbook",
		Long: `Export every selected table of a SQLite database to its own sheet of a new
workbook. A bare workbook name is created next to the database.`,
		Example: `  sheetdb reverse -d sales.db
  sheetdb reverse -d sales.db -o report -t clients -y`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLogger("reverse", func(logger *zap.Logger) error {
				return a.reverse(cmd.Context(), logger, opts)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.database, "database", "d", "", "database to export")
	flags.StringVarP(&opts.output, "output", "o", "", "workbook to write (default: database name with .xlsx)")
	flags.StringArrayVarP(&opts.tables, "table", "t", nil, "table to export; repeat for several (default: all)")
	flags.BoolVarP(&opts.conflicts.yes, "yes", "y", false, "accept every default without prompting")
	flags.StringVar(&opts.conflicts.workbook, "on-file-exists", "", "existing workbook: overwrite or cancel")
	return cmd
}

func (a *app) reverse(ctx context.Context, logger *zap.Logger, opts *reverseOptions) error {
	d := a.display()
	p := newPrompter(a.in, a.out)
	resolver, err := opts.conflicts.resolver(p)
	if err != nil {
		return err
	}
	libOpts := []sheetdb.Option{sheetdb.WithLogger(logger)}

	source := opts.database
	if source == "" {
		if opts.conflicts.yes {
			return fmt.Errorf("%w: --database is required with --yes", sheetdb.ErrValidation)
		}
		if source, err = p.AskRequired(ctx, "Database path"); err != nil {
			return err
		}
	}

	reader, err := sheetdb.NewTableReader(source, libOpts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	d.Title("Analysing %s", source)
	tables, err := reader.DescribeAllTables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		return fmt.Errorf("%w: no table in %s", sheetdb.ErrValidation, source)
	}
	d.Success("%d table(s) found", len(tables))
	d.Tables(tables)

	selected, err := selectTables(ctx, p, tables, opts)
	if err != nil {
		return err
	}
	d.Success("%d table(s) selected", len(selected))

	name := opts.output
	if name == "" {
		name = model.NewFile(source).Stem() + model.ExtXLSX
		if !opts.conflicts.yes {
			if name, err = p.Ask(ctx, "Workbook name", name); err != nil {
				return err
			}
		}
	}
	target, err := sheetdb.ResolveDestination(ctx, placeBeside(name, filepath.Dir(source), model.ExtXLSX), model.ScopeWorkbook, resolver, logger)
	if err != nil {
		return err
	}

	logging.ConversionStart(logger, "reverse", source, target)
	d.Title("Exporting")

	writer := sheetdb.NewSheetWriter(target, libOpts...)
	defer writer.Close()
	report, err := sheetdb.NewExporter(libOpts...).Export(ctx, reader, writer, selected)
	if report != nil {
		for _, t := range report.Tables {
			if t.Err != nil {
				logging.Warning(logger, "table not exported", zap.String("table", t.Source), zap.Error(t.Err))
				continue
			}
			logging.TableSuccess(logger, t.Source, t.Rows, t.Duration)
		}
		logging.RunSummary(logger, target, report.Exported(), report.TotalRows(), report.Duration)
		_, size := writer.FileSize()
		d.ExportSummary(report, size, a.cfg.LogFile)
	}
	return err
}

func selectTables(ctx context.Context, p *prompter, tables []*model.TableDescriptor, opts *reverseOptions) ([]*model.TableDescriptor, error) {
	if len(opts.tables) > 0 {
		var (
			selected []*model.TableDescriptor
			missing  []error
		)
		for _, name := range opts.tables {
			i := slices.IndexFunc(tables, func(t *model.TableDescriptor) bool { return t.Name == name })
			if i < 0 {
				missing = append(missing, fmt.Errorf("%w: %q", sheetdb.ErrTableNotFound, name))
				continue
			}
			selected = append(selected, tables[i])
		}
		if len(missing) > 0 {
			return nil, errors.Join(missing...)
		}
		return selected, nil
	}
	if opts.conflicts.yes {
		return tables, nil
	}

	indices, err := p.SelectIndices(ctx, "Tables to export", len(tables))
	if err != nil {
		return nil, err
	}
	selected := make([]*model.TableDescriptor, len(indices))
	for i, idx := range indices {
		selected[i] = tables[idx]
	}
	return selected, nil
}
