package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nao1215/sheetdb"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <database>",
		Short: "Show the tables, row counts and size of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLogger("info", func(logger *zap.Logger) error {
				reader, err := sheetdb.NewTableReader(args[0], sheetdb.WithLogger(logger))
				if err != nil {
					return err
				}
				defer reader.Close()

				stats, err := reader.DatabaseStats(cmd.Context())
				if err != nil {
					return err
				}
				a.display().DatabaseStats(stats)
				return nil
			})
		},
	}
}
