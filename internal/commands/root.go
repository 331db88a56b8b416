package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/buildinfo"
	"github.com/fintrack-dev/fintrack/internal/categories"
	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/ledger"
)

// app is the state shared by every subcommand.
type app struct {
	dir     string
	verbose bool
	logger  *log.Logger
	ids     id.Generator
	now     func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{ids: id.UUID{}, now: time.Now}

	rootCmd := &cobra.Command{
		Use:     "fintrack",
		Short:   "Personal finance ledger with CSV import and export",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), a.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", ".", "ledger directory")
	rootCmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(a),
		newImportCommand(a),
		newExportCommand(a),
		newCategoriesCommand(a),
		newTransactionsCommand(a),
		newLogCommand(a),
	)

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "fintrack",
		ReportTimestamp: true,
		Level:           level,
	})
}

// store is an opened ledger directory.
type store struct {
	root string
	cfg  *config.Config
	cats *categories.Service
	txns *ledger.Service
}

func (a *app) open() (*store, error) {
	root, err := filepath.Abs(a.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%s is not a fintrack ledger (run fintrack init): %w", root, err)
	}
	cats, err := categories.Load(root, a.ids, a.now)
	if err != nil {
		return nil, err
	}
	txns, err := ledger.Load(root, cats, a.ids, a.now)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("opened ledger", "root", root, "categories", len(cats.List()), "transactions", len(txns.List()))
	return &store{root: root, cfg: cfg, cats: cats, txns: txns}, nil
}
