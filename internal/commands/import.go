package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/gitops"
	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/importer"
	"github.com/fintrack-dev/fintrack/internal/importlog"
	"github.com/fintrack-dev/fintrack/internal/ledger"
)

type importOptions struct {
	maps   []string
	preset string
	dryRun bool
}

func newImportCommand(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [file.csv...]",
		Short: "Import transactions from CSV files",
		Long: `Import transactions from one or more CSV files. With no arguments, every
*.csv file in the ledger's import/ directory is imported and moved to
import/processed/ once committed.

Columns are matched to fields by header name. Override the guess with
--map field=Header, or skip an optional field with --map field=.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.maps, "map", nil, "map a field to a column header (field=Header), repeatable")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "use a named column mapping instead of guessing")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would be imported without saving")

	return cmd
}

// importSource is one file to import. inbox files are moved to
// import/processed/ after a successful commit.
type importSource struct {
	path  string
	inbox bool
}

func (a *app) runImport(cmd *cobra.Command, args []string, opts importOptions) error {
	st, err := a.open()
	if err != nil {
		return err
	}

	overrides, err := parseMapFlags(opts.maps)
	if err != nil {
		return err
	}

	var preset *importer.Mapping
	if opts.preset != "" {
		reg, err := st.cfg.PresetRegistry()
		if err != nil {
			return err
		}
		m, ok := reg.Get(opts.preset)
		if !ok {
			return fmt.Errorf("unknown preset %q", opts.preset)
		}
		preset = &m
	}

	var sources []importSource
	for _, arg := range args {
		sources = append(sources, importSource{path: arg})
	}
	if len(sources) == 0 {
		pending, err := importer.Pending(st.root)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No CSV files waiting in %s/\n", importer.InboxDir)
			return nil
		}
		for _, p := range pending {
			sources = append(sources, importSource{path: p.Path, inbox: true})
		}
	}

	var errs []error
	for _, src := range sources {
		name := filepath.Base(src.path)
		if err := a.importFile(cmd, st, src, preset, overrides, opts.dryRun); err != nil {
			if len(sources) == 1 {
				return err
			}
			a.logger.Error("import failed", "file", name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *app) importFile(cmd *cobra.Command, st *store, src importSource, preset *importer.Mapping, overrides map[importer.Field]string, dryRun bool) error {
	out := cmd.OutOrStdout()
	name := filepath.Base(src.path)

	f, err := os.Open(src.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src.path, err)
	}
	table, err := importer.ReadCSV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", src.path, err)
	}

	if dups := table.DuplicateHeaders(); len(dups) > 0 {
		a.logger.Warn("duplicate column headers, the last one is used", "file", name, "headers", strings.Join(dups, ", "))
	}

	mapping := importer.AutoMap(table.Headers, st.cfg.Import.FuzzyDistance)
	if preset != nil {
		mapping = *preset
	}
	for field, col := range overrides {
		mapping.Set(field, col)
	}
	for _, field := range importer.Fields() {
		a.logger.Debug("column mapping", "file", name, "field", field, "column", mapping.Column(field))
	}
	if err := mapping.Validate(table.Headers); err != nil {
		return err
	}

	mapper := importer.NewMapper(a.ids, a.now)
	mapper.Uncategorized = st.cfg.Import.UncategorizedName
	res := mapper.Map(table, mapping, st.cats.List())

	for _, rowErr := range res.Errors {
		a.logger.Warn("skipped row", "file", name, "row", rowErr.Row, "reason", rowErr.Reason)
	}
	if err := res.Err(); err != nil {
		return err
	}

	if dryRun {
		printPreview(out, st, res)
		return nil
	}

	sum, err := st.txns.Import(res.Transactions, res.MissingCategories, ledger.ImportOptions{
		CategoryColor: st.cfg.Import.CategoryColor,
		CategoryIcon:  st.cfg.Import.CategoryIcon,
		Skipped:       len(res.Errors),
	})
	if err != nil {
		return err
	}

	if src.inbox {
		dst, err := importer.MarkProcessed(st.root, name)
		if err != nil {
			return err
		}
		a.logger.Debug("moved to processed", "file", name, "dest", dst)
	}

	var hash string
	if st.cfg.Git.AutoCommit && gitops.IsRepo(st.root) {
		msg := fmt.Sprintf("import: %s (%d transactions)", name, sum.Imported)
		hash, err = gitops.Commit(cmd.Context(), st.root, msg, gitAuthor(st.cfg))
		if err != nil && !errors.Is(err, gitops.ErrNothingToCommit) {
			return fmt.Errorf("committing import: %w", err)
		}
	}

	if err := importlog.Append(st.root, importlog.Entry{
		Timestamp:         a.now(),
		File:              name,
		Imported:          sum.Imported,
		Skipped:           sum.Skipped,
		CategoriesCreated: sum.CategoriesCreated,
		CommitHash:        hash,
	}); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %s\n", name, sum)
	return nil
}

// parseMapFlags reads --map field=Header values. An empty header skips the field.
func parseMapFlags(values []string) (map[importer.Field]string, error) {
	overrides := make(map[importer.Field]string, len(values))
	for _, v := range values {
		fieldName, col, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map %q (want field=Header)", v)
		}
		field, err := importer.ParseField(fieldName)
		if err != nil {
			return nil, err
		}
		overrides[field] = strings.TrimSpace(col)
	}
	return overrides, nil
}

func printPreview(w io.Writer, st *store, res importer.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, t := range res.Transactions {
		category := t.CategoryID
		if key, ok := id.MissingCategoryKey(t.CategoryID); ok {
			category = key + " (new)"
		} else if c, ok := st.cats.Get(t.CategoryID); ok {
			category = c.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Date.Format("2006-01-02"), t.Type, category, t.Amount.StringFixed(2), t.Description)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d transaction(s) ready, %d row(s) with errors\n", len(res.Transactions), len(res.Errors))
	for _, msg := range res.Messages() {
		fmt.Fprintln(w, "  "+msg)
	}
	if len(res.MissingCategories) > 0 {
		fmt.Fprintf(w, "New categories: %s\n", strings.Join(res.MissingCategories, ", "))
	}
	fmt.Fprintln(w, "Dry run: nothing was saved.")
}
