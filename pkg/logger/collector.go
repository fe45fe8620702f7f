package logger

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Sink receives aggregated entries when the collector flushes.
type Sink func(entries []AggregatedLogEntry)

type CollectionConfig struct {
	CountThreshold int  // max unique entries held before an automatic flush (0 = unbounded)
	Sink           Sink // receives flushed entries; nil drops them
}

type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector deduplicates warnings and errors so a long experiment can end
// with a short summary instead of a scrollback hunt.
type LogCollector struct {
	config *CollectionConfig
	logMap map[string]*AggregatedLogEntry
	mutex  sync.Mutex
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	if config == nil {
		config = &CollectionConfig{}
	}
	return &LogCollector{
		config: config,
		logMap: make(map[string]*AggregatedLogEntry),
	}
}

func (d *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := d.generateKey(level, message, fields, caller)

	d.mutex.Lock()
	if entry, exists := d.logMap[key]; exists {
		entry.Count++
		entry.LastSeen = now
	} else {
		d.logMap[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	var drained []AggregatedLogEntry
	if d.config.CountThreshold > 0 && len(d.logMap) >= d.config.CountThreshold {
		drained = d.drainLocked()
	}
	d.mutex.Unlock()
	d.deliver(drained)
}

// Entries returns a snapshot ordered by first occurrence.
func (d *LogCollector) Entries() []AggregatedLogEntry {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.snapshotLocked()
}

// Flush hands the current entries to the sink and resets the collector.
func (d *LogCollector) Flush() {
	d.mutex.Lock()
	drained := d.drainLocked()
	d.mutex.Unlock()
	d.deliver(drained)
}

func (d *LogCollector) generateKey(level, message string, fields map[string]interface{}, caller string) string {
	data := struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{
		Level:   level,
		Message: message,
		Fields:  fields,
		Caller:  caller,
	}

	jsonData, _ := json.Marshal(data)
	hash := sha256.Sum256(jsonData)
	return fmt.Sprintf("%x", hash)
}

func (d *LogCollector) snapshotLocked() []AggregatedLogEntry {
	logs := make([]AggregatedLogEntry, 0, len(d.logMap))
	for _, entry := range d.logMap {
		logs = append(logs, *entry)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].FirstSeen.Before(logs[j].FirstSeen) })
	return logs
}

func (d *LogCollector) drainLocked() []AggregatedLogEntry {
	if len(d.logMap) == 0 {
		return nil
	}
	logs := d.snapshotLocked()
	d.logMap = make(map[string]*AggregatedLogEntry)
	return logs
}

// deliver runs outside the lock: the sink usually logs, and logging feeds AddLog.
func (d *LogCollector) deliver(logs []AggregatedLogEntry) {
	if len(logs) == 0 || d.config.Sink == nil {
		return
	}
	d.config.Sink(logs)
}

func (d *LogCollector) Close() {
	d.Flush()
}
