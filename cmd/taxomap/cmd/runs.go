package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
	"github.com/cognicore/taxomap/pkg/taxomap/match"
	"github.com/cognicore/taxomap/pkg/taxomap/sheet"
	"github.com/cognicore/taxomap/pkg/taxomap/store"
	"github.com/cognicore/taxomap/pkg/taxomap/store/sqlite"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	var (
		db    string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List stored runs, or print the rows of one run as TSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if db == "" {
				return errors.New("--db or " + envDB + " is required")
			}
			st, err := sqlite.OpenSQLite(cmd.Context(), db)
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 1 {
				return printRunRows(cmd, st, args[0])
			}

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTARTED\tCOUNTRY\tTHRESHOLD\tRECORDS\tMATCHED\tROWS")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					r.ID, r.StartedAt.Local().Format(time.DateTime), r.Country, r.Threshold,
					r.TotalRecords, r.MatchedRecords, r.OutputRows)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&db, "db", envOr(envDB, ""), "SQLite database for run history")
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "Maximum runs to list")
	return cmd
}

func printRunRows(cmd *cobra.Command, st store.Store, id string) error {
	ctx := cmd.Context()
	if _, found, err := st.GetRun(ctx, id); err != nil {
		return err
	} else if !found {
		return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	rows, err := st.RunRows(ctx, id)
	if err != nil {
		return err
	}

	out := make([]match.ResultRow, len(rows))
	for i, r := range rows {
		out[i] = match.ResultRow{
			URL:      r.URL,
			Product:  r.Product,
			Domain:   r.Domain,
			Segment:  r.Segment,
			Topic:    r.Topic,
			Score:    r.Score,
			Keyword:  r.Keyword,
			Promoted: r.Promoted,
		}
	}
	return sheet.WriteDelimited(cmd.OutOrStdout(), match.Table(out, true), '\t')
}
