// Package cli implements the sheetdb command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nao1215/sheetdb"
	"github.com/nao1215/sheetdb/domain/model"
	"github.com/nao1215/sheetdb/internal/config"
	"github.com/nao1215/sheetdb/internal/logging"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
)

// app carries what every command needs.
type app struct {
	cfg     *config.Config
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		newDisplay(out, errOut, true).Error(err)
		return exitError
	}
	a := &app{cfg: cfg, in: in, out: out, errOut: errOut, noColor: cfg.Colorless()}

	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err = root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case sheetdb.IsCanceled(err):
		a.display().Warn("Operation canceled")
		return exitOK
	default:
		a.display().Error(err)
		return exitError
	}
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sheetdb",
		Short: "Convert spreadsheet workbooks to SQLite databases and back",
		Long: `sheetdb turns every sheet of an .xlsx workbook into a SQLite table, with
cleaned-up column names and inferred column types, and exports database
tables back into a workbook.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.LogFile, "log-file", a.cfg.LogFile, "log file the run is appended to (env SHEETDB_LOG_FILE)")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "minimum log level: debug, info, warn, error (env SHEETDB_LOG_LEVEL)")
	flags.BoolVar(&a.noColor, "no-color", a.noColor, "disable coloured output (env NO_COLOR)")

	root.AddCommand(
		a.newConvertCmd(),
		a.newReverseCmd(),
		a.newInfoCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) display() *display {
	return newDisplay(a.out, a.errOut, a.noColor)
}

// withLogger opens the run log for component, runs fn and records a failure
// before returning it.
func (a *app) withLogger(component string, fn func(*zap.Logger) error) error {
	logger, closeLog, err := logging.NewLogger(logging.Config{
		Component: component,
		Level:     a.cfg.LogLevel,
		File:      a.cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	err = fn(logger)
	switch {
	case err == nil:
	case sheetdb.IsCanceled(err):
		logger.Info("operation canceled by user")
	default:
		logging.Failure(logger, component, err)
	}
	return err
}

// conflictFlags are the per-scope actions given on the command line.
type conflictFlags struct {
	yes      bool
	database string
	table    string
	workbook string
}

// resolver picks, per scope, the flag action, the auto-confirm default or
// an interactive prompt, in that order.
func (f conflictFlags) resolver(p *prompter) (sheetdb.Resolver, error) {
	auto := sheetdb.AutoResolver()
	interactive := promptResolver{p: p}

	fixed := map[model.Scope]string{
		model.ScopeDatabase: f.database,
		model.ScopeTable:    f.table,
		model.ScopeWorkbook: f.workbook,
	}
	actions := make(map[model.Scope]model.Action, len(fixed))
	for scope, value := range fixed {
		if value == "" {
			continue
		}
		action, err := model.ParseAction(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sheetdb.ErrValidation, err)
		}
		if action == model.ActionRename {
			return nil, fmt.Errorf("%w: rename needs a name and cannot be given as a %s flag", sheetdb.ErrValidation, scope)
		}
		actions[scope] = action
	}

	return sheetdb.ResolverFunc(func(ctx context.Context, c sheetdb.Conflict) (model.Decision, error) {
		if action, ok := actions[c.Scope]; ok {
			return model.Decision{Action: action}, nil
		}
		if f.yes {
			return auto.Resolve(ctx, c)
		}
		return interactive.Resolve(ctx, c)
	}), nil
}
