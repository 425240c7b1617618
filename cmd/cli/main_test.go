package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"goagree/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("RBA_REPORT_FORMAT", "")
	t.Setenv("RBA_STORE_DSN", "")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestSimulateThenAnalyze(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "diffs.csv")

	sim := newSimulateCmd()
	var out bytes.Buffer
	sim.SetOut(&out)
	sim.SetArgs([]string{data, "--participants", "6", "--seed", "3"})
	require.NoError(t, sim.Execute())
	assert.Contains(t, out.String(), "for 6 participants")

	cfg := testConfig(t)
	cfg.Data.File = data
	cfg.Report.Format = config.FormatMarkdown
	cfg.Report.Output = filepath.Join(dir, "report.md")
	cfg.Report.XLSX = filepath.Join(dir, "report.xlsx")
	cfg.Store.DSN = filepath.Join(dir, "reports.db")

	require.NoError(t, runAnalyze(context.Background(), cfg))

	md, err := os.ReadFile(cfg.Report.Output)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Repeated-measures Bland-Altman agreement")
	assert.FileExists(t, cfg.Report.XLSX)

	svc, closeStore, err := newService(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()
	history, err := svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 6, history[0].Participants)
}

func TestHistoryNeedsStore(t *testing.T) {
	cmd := newHistoryCmd(testConfig(t))
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "joints.csv", label("joints.csv", ""))
	assert.Equal(t, "joints.csv [knee]", label("joints.csv", "knee"))
}
