package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/categories"
	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/gitops"
	"github.com/fintrack-dev/fintrack/internal/importer"
	"github.com/fintrack-dev/fintrack/internal/ledger"
)

func newInitCommand(a *app) *cobra.Command {
	var name string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if name == "" {
				name = filepath.Base(absDir)
			}

			if err := a.runInit(cmd, absDir, name, !noGit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized FinTrack ledger %q at %s\n", name, absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "ledger name (defaults to the directory name)")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func (a *app) runInit(cmd *cobra.Command, dir, name string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(name)
	dirs := []string{
		"data",
		"logs",
		importer.InboxDir,
		importer.ProcessedDir,
		cfg.Export.Dir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if useGit {
		cfg.Git.AutoCommit = gitops.Available()
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	cats := categories.NewService(nil, a.ids, a.now)
	for _, c := range categories.DefaultSet() {
		if _, err := cats.Create(c); err != nil {
			return fmt.Errorf("adding default category %s: %w", c.Name, err)
		}
	}
	if err := cats.Save(dir); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}

	txns, err := ledger.Load(dir, cats, a.ids, a.now)
	if err != nil {
		return err
	}
	if err := txns.Save(); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}

	gitignore := cfg.Export.Dir + "/\n" + importer.InboxDir + "/*.csv\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, importer.InboxDir, ".gitkeep"), nil, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !useGit {
		return nil
	}
	if !cfg.Git.AutoCommit {
		a.logger.Warn("git not found; ledger will not be versioned")
		return nil
	}

	ctx := cmd.Context()
	if err := gitops.Init(ctx, dir); err != nil {
		return err
	}
	hash, err := gitops.Commit(ctx, dir, "init: Initialize "+name, gitAuthor(cfg))
	if err != nil && !errors.Is(err, gitops.ErrNothingToCommit) {
		return fmt.Errorf("initial commit: %w", err)
	}
	a.logger.Debug("initial commit", "hash", hash)
	return nil
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}
