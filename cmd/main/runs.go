package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"price-recon/internal/store"
)

var (
	runsLimit int
	runsID    string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect comparison run history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if runsID != "" {
			run, err := st.GetRun(cmd.Context(), runsID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		runs, err := st.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
			return nil
		}
		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "max number of runs to list")
	runsCmd.Flags().StringVar(&runsID, "id", "", "show one run with its records as JSON")
	rootCmd.AddCommand(runsCmd)
}

func formatRunsList(w io.Writer, runs []store.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE A\tSOURCE B\tTHRESHOLD\tMATCHED\tBELOW\tINVALID")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\t%d/%d\t%d\t%d\n",
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.SourceA,
			r.SourceB,
			r.Threshold,
			r.Stats.Matched, r.Stats.CatalogB,
			r.Stats.BelowThreshold,
			r.Stats.InvalidPrices,
		)
	}
	_ = tw.Flush()
}
