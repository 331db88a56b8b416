package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/importlog"
)

func newLogCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the history of committed imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			entries, err := importlog.Read(st.root)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No imports yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tFILE\tIMPORTED\tSKIPPED\tNEW CATEGORIES\tCOMMIT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
					e.Timestamp.Local().Format(time.DateTime), e.File, e.Imported, e.Skipped, e.CategoriesCreated, e.CommitHash)
			}
			return tw.Flush()
		},
	}
}
