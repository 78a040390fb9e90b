package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyCSV = `Date,Action,Symbol,Description,Quantity,Price,Amount
2024-01-10,BUY,AAPL,APPLE INC,10,100,-1000
2024-02-10,BUY,AAPL,APPLE INC,5,130,-650
2024-05-15,DIVIDEND,AAPL,APPLE INC,,,3.75
`

// writeConfig points the CLI at a SQLite file so state survives between runs.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf("[storage]\nbackend = \"sqlite\"\n\n[storage.sqlite]\npath = %q\n", filepath.Join(dir, "folio.db"))
	path := filepath.Join(dir, "folio.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"import", "holdings", "transactions", "dividends", "income", "period", "summary", "clear", "mcp", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("plain"))
}

func TestImportThenReport(t *testing.T) {
	cfg := writeConfig(t)
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "history.csv"), []byte(historyCSV), 0o644))

	out, err := run(t, "", "--config", cfg, "--plain", "import", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "history.csv")

	out, err = run(t, "", "--config", cfg, "--plain", "holdings")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")

	out, err = run(t, "", "--config", cfg, "--plain", "transactions", "--symbol", "msft")
	require.NoError(t, err)
	assert.NotContains(t, out, "AAPL")

	_, err = run(t, "", "--config", cfg, "--plain", "period", "custom", "--months", "jan,feb")
	require.NoError(t, err)

	_, err = run(t, "", "--config", cfg, "--plain", "summary")
	require.NoError(t, err)
}

func TestImport_ReportsUnparseableFile(t *testing.T) {
	cfg := writeConfig(t)
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "a_history.csv"), []byte(historyCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "b_notes.csv"), []byte("hello,world\n"), 0o644))

	out, err := run(t, "", "--config", cfg, "--plain", "import", dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "a_history.csv")
	assert.Contains(t, out, "b_notes.csv")
}

func TestPeriod_MonthsRequireCustom(t *testing.T) {
	_, err := run(t, "", "period", "ytd", "--months", "jan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom")

	_, err = run(t, "", "period", "decade")
	require.Error(t, err)
}

func TestClear_PromptDeclined(t *testing.T) {
	cfg := writeConfig(t)
	dataDir := t.TempDir()
	file := filepath.Join(dataDir, "history.csv")
	require.NoError(t, os.WriteFile(file, []byte(historyCSV), 0o644))
	_, err := run(t, "", "--config", cfg, "import", file)
	require.NoError(t, err)

	out, err := run(t, "n\n", "--config", cfg, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "aborted")

	out, err = run(t, "", "--config", cfg, "--plain", "holdings")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")

	out, err = run(t, "", "--config", cfg, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "portfolio cleared")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "folio version "))
}
