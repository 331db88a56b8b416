package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/exporter"
)

const dayLayout = "2006-01-02"

func newExportCommand(a *app) *cobra.Command {
	var (
		what     string
		from, to string
		outDir   string
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions and categories as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			section, err := exporter.ParseSection(what)
			if err != nil {
				return err
			}
			opts := exporter.Options{Section: section}
			if opts.From, err = parseDay("--from", from); err != nil {
				return err
			}
			if opts.To, err = parseDay("--to", to); err != nil {
				return err
			}
			if !opts.From.IsZero() && !opts.To.IsZero() && opts.To.Before(opts.From) {
				return fmt.Errorf("--to %s is before --from %s", to, from)
			}

			st, err := a.open()
			if err != nil {
				return err
			}

			file, err := exporter.Build(opts, st.txns.List(), st.cats.List(), a.now())
			if err != nil {
				return err
			}

			if toStdout {
				fmt.Fprintln(cmd.OutOrStdout(), file.Content)
				return nil
			}

			dir := outDir
			if dir == "" {
				dir = st.cfg.Export.Dir
			}
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(st.root, dir)
			}
			path, err := exporter.Write(dir, file)
			if err != nil {
				return err
			}

			a.logger.Debug("export written", "path", path, "bytes", len(file.Content))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d record(s) to %s\n", file.Records, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&what, "what", string(exporter.SectionTransactions), "what to export: transactions, categories or both")
	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print the export instead of writing a file")

	return cmd
}

// parseDay reads a YYYY-MM-DD flag value. An empty value is the zero time.
func parseDay(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q (want YYYY-MM-DD)", flag, s)
	}
	return d, nil
}
