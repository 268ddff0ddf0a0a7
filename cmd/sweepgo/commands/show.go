package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sweepgo/pkg/sweeplog"
)

func newShowCommand() *cobra.Command {
	var (
		format  string
		pending bool
	)

	cmd := &cobra.Command{
		Use:   "show <log file>",
		Short: "Render a saved sweep log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var (
				log sweeplog.SweepLog
				err error
			)
			switch filepath.Ext(path) {
			case ".sweep":
				log, err = sweeplog.ReadArchive(path)
			default:
				log, err = sweeplog.ReadJSON(path)
			}
			if err != nil {
				return err
			}

			if pending {
				params := sweeplog.PendingParams(log)
				if len(params) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no pending trials")
					return nil
				}
				for _, p := range params {
					fmt.Fprintln(cmd.OutOrStdout(), p.Key())
				}
				return nil
			}

			formatResolved := resolveString(format, appConfig.Format)
			if formatResolved == "" {
				formatResolved = "table"
			}
			rep, err := buildReporter(formatResolved, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return rep.Report(sweeplog.ToReport(log))
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format (table, json, html, markdown, csv)")
	cmd.Flags().BoolVar(&pending, "pending", false, "list parameters of trials that did not complete")

	return cmd
}
