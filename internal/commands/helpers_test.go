package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fintrack-dev/fintrack/internal/commands"
)

// runFintrack executes the CLI in-process and returns stdout and stderr.
func runFintrack(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// newLedger initializes a ledger without git in a temp dir.
func newLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, _, err := runFintrack(t, "init", dir, "--name", "Test Ledger", "--no-git")
	require.NoError(t, err)
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const bankCSV = "Date,Amount,Category,Type,Description\n" +
	"2024-01-05,1500,Groceries,expense,Weekly shop\n" +
	"2024-01-06,abc,Salary,income,Pay\n" +
	"01/07/2024,200,Bonus,income,Gift\n"
