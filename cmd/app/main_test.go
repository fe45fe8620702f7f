package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig points every output of the app into dir/out.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	out := filepath.Join(dir, "out")
	body := fmt.Sprintf(`logger:
  output: stderr
data:
  path_pattern: %s
  split_date: "2017-02-14"
experiment:
  symbols: [SYN]
  window_sizes: [3]
  repetitions: 1
  epochs: 2
  seed: 7
report:
  dir: %s
diagram:
  dir: %s
`, filepath.Join(dir, "%s.csv"), out, out)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func outputs(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunTooManyArgumentsDoesNoWork(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-config", cfg, "plot", "dm"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, "invalid number of arguments\n", stdout.String())
	assert.Empty(t, outputs(t, dir))
}

func TestRunUnknownModeDoesNoWork(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-config", cfg, "train"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "unknown mode: train")
	assert.Empty(t, outputs(t, dir))
}

func TestRunExplicitMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "config load failed")
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-nope"}, &stdout, &stderr))
}

func TestRunPipelineThenCompare(t *testing.T) {
	if testing.Short() {
		t.Skip("trains the four networks")
	}
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	var csv strings.Builder
	csv.WriteString("Date,Open,Close\n")
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		v := 100 + float64(i)*0.5 + 5*math.Sin(float64(i)/4)
		fmt.Fprintf(&csv, "%s,%.2f,%.2f\n", start.AddDate(0, 0, i).Format("2006-01-02"), v, v)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SYN.csv"), []byte(csv.String()), 0o644))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-config", cfg}, &stdout, &stderr), stderr.String())
	assert.Equal(t, []string{"predictions_SYN.csv"}, outputs(t, dir))

	raw, err := os.ReadFile(filepath.Join(dir, "out", "predictions_SYN.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "actual,ann,cnn,lstm,gru", lines[0])
	// 2017-02-15 .. 2017-03-01
	assert.Len(t, lines, 1+15)

	require.Equal(t, 0, run([]string{"-config", cfg, "dm"}, &stdout, &stderr), stderr.String())
	assert.Contains(t, outputs(t, dir), "dm_SYN.csv")
}
