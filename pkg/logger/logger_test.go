package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "info", Format: "json", Writer: &buf})
	require.NoError(t, err)

	l.With("run_id", "abc").Info("fit done",
		String("symbol", "INFY"),
		Int("window", 3),
		Float64("mse", 0.25),
		Bool("stopped", true),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fit done", entry["message"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "INFY", entry["symbol"])
	assert.Equal(t, float64(3), entry["window"])
	assert.Equal(t, 0.25, entry["mse"])
	assert.Equal(t, true, entry["stopped"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	require.Error(t, err)
}

func TestCollectorDeduplicatesWarningsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	var flushed []AggregatedLogEntry
	c := l.AddCollector(&CollectionConfig{Sink: func(e []AggregatedLogEntry) { flushed = e }})

	for i := 0; i < 3; i++ {
		l.Error("symbol failed", String("symbol", "INFY"), Error(errors.New("boom")))
	}
	l.Warn("slow fit", String("arch", "lstm"))
	l.Info("not collected")

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "error", entries[0].Level)
	assert.Equal(t, 3, entries[0].Count)
	assert.Equal(t, "warn", entries[1].Level)

	c.Flush()
	assert.Len(t, flushed, 2)
	assert.Empty(t, c.Entries())
}

func TestCollectorThresholdFlushes(t *testing.T) {
	var batches int
	c := NewLogCollector(&CollectionConfig{CountThreshold: 2, Sink: func([]AggregatedLogEntry) { batches++ }})
	c.AddLog("warn", "a", nil, "x.go:1")
	c.AddLog("warn", "b", nil, "x.go:2")
	assert.Equal(t, 1, batches)
	assert.Empty(t, c.Entries())
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("ignored", Strings("symbols", []string{"A", "B"}))
	l.Error("ignored", Error(errors.New("x")))
}

func TestFloatsAndDurationFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	l.Debug("predictions", Floats("head", []float64{0.5, 0.25}), Duration("took", 1500*time.Millisecond))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, []interface{}{0.5, 0.25}, entry["head"])
	assert.Equal(t, float64(1500), entry["took"])
}
