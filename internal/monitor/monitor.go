// Package monitor persists structured status information for the bots.
// Each bot gets one JSON document on disk holding the most recent runs,
// aggregate success/failure counts, and a bounded history of notable
// events. Writes are atomic so the files can be safely inspected by
// other processes while a bot is running.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxEvents is the event history bound used when no explicit
// limit is configured.
const DefaultMaxEvents = 50

// Event is a single timestamped entry in a bot's event history.
// Type is one of "success", "error", "warning", "info".
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RunOutcome is the latest recorded result for a named recurring run
// (e.g. "morning"). Each run label holds exactly one outcome; recording
// again for the same label replaces the prior entry.
type RunOutcome struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// State is the full monitoring document persisted for one bot.
type State struct {
	BotName      string                `json:"bot_name"`
	LastUpdated  *time.Time            `json:"last_updated"`
	LastSuccess  *time.Time            `json:"last_success"`
	LastFailure  *time.Time            `json:"last_failure"`
	SuccessCount int                   `json:"success_count"`
	FailureCount int                   `json:"failure_count"`
	Events       []Event               `json:"events"`
	Runs         map[string]RunOutcome `json:"runs"`
}

// Clone returns a deep copy of the state. Callers may inspect or
// serialize the copy without observing later mutations.
func (s *State) Clone() State {
	cp := *s
	cp.LastUpdated = cloneTime(s.LastUpdated)
	cp.LastSuccess = cloneTime(s.LastSuccess)
	cp.LastFailure = cloneTime(s.LastFailure)

	cp.Events = make([]Event, len(s.Events))
	for i, e := range s.Events {
		e.Metadata = cloneMetadata(e.Metadata)
		cp.Events[i] = e
	}

	cp.Runs = make(map[string]RunOutcome, len(s.Runs))
	for label, run := range s.Runs {
		run.Metadata = cloneMetadata(run.Metadata)
		cp.Runs[label] = run
	}
	return cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// cloneMetadata deep-copies a JSON-compatible metadata value tree.
func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = cloneValue(v)
	}
	return cp
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMetadata(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Monitor records status information for a single named bot. All
// mutations run under a mutex and are persisted immediately, so
// concurrent recorders within one process cannot interleave a read
// with another's write.
//
// The monitoring path is fail-open: storage faults are logged and
// swallowed so monitoring never blocks the bot's primary work.
type Monitor struct {
	botName    string
	statusDir  string
	statusFile string
	maxEvents  int
	logger     zerolog.Logger

	mu    sync.Mutex
	state *State
}

// New creates a Monitor for botName, persisting to
// <statusDir>/<botName>_status.json. If maxEvents is not positive,
// DefaultMaxEvents is used. Existing state on disk is loaded; a
// missing or unreadable file yields a fresh default document.
func New(logger zerolog.Logger, botName, statusDir string, maxEvents int) *Monitor {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	m := &Monitor{
		botName:    botName,
		statusDir:  statusDir,
		statusFile: StatusFilePath(statusDir, botName),
		maxEvents:  maxEvents,
		logger:     logger.With().Str("bot", botName).Logger(),
	}

	if err := os.MkdirAll(statusDir, 0755); err != nil {
		m.logger.Error().Err(err).Str("dir", statusDir).Msg("could not create monitoring directory")
	}

	m.state = m.loadState()
	return m
}

// StatusFilePath returns the status file path for a bot name inside dir.
func StatusFilePath(dir, botName string) string {
	return filepath.Join(dir, botName+"_status.json")
}

// loadState reads existing monitoring state from disk, falling back to
// a default-initialized document on any read or parse failure.
func (m *Monitor) loadState() *State {
	data, err := os.ReadFile(m.statusFile)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn().Err(err).Str("file", m.statusFile).Msg("could not read monitoring state")
		}
		return m.applyDefaults(&State{})
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		m.logger.Warn().Err(err).Str("file", m.statusFile).Msg("could not parse monitoring state")
		return m.applyDefaults(&State{})
	}
	return m.applyDefaults(&state)
}

// applyDefaults repairs a partial or legacy document so required fields
// are always present.
func (m *Monitor) applyDefaults(state *State) *State {
	if state.BotName == "" {
		state.BotName = m.botName
	}
	if state.Events == nil {
		state.Events = []Event{}
	}
	if state.Runs == nil {
		state.Runs = map[string]RunOutcome{}
	}
	return state
}

// saveStateLocked persists the state atomically: the full document is
// written to a temp file in the same directory and renamed over the
// target, so readers see either the old or the new complete document.
// Caller must hold m.mu.
func (m *Monitor) saveStateLocked() {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		m.logger.Error().Err(err).Msg("could not encode monitoring state")
		return
	}

	tmpPath := m.statusFile + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		m.logger.Error().Err(err).Str("file", tmpPath).Msg("failed to write monitoring state")
		return
	}
	if err := os.Rename(tmpPath, m.statusFile); err != nil {
		m.logger.Error().Err(err).Str("file", m.statusFile).Msg("failed to replace monitoring state")
	}
}

// recordEventLocked appends an event, trims history to maxEvents, and
// updates the aggregate timestamps and counters. Caller must hold m.mu.
func (m *Monitor) recordEventLocked(ts time.Time, eventType, message string, metadata map[string]any) {
	event := Event{
		Timestamp: ts,
		Type:      eventType,
		Message:   message,
		Metadata:  metadata,
	}

	m.state.Events = append(m.state.Events, event)
	if len(m.state.Events) > m.maxEvents {
		m.state.Events = m.state.Events[len(m.state.Events)-m.maxEvents:]
	}

	m.state.LastUpdated = cloneTime(&ts)
	switch eventType {
	case "success":
		m.state.LastSuccess = cloneTime(&ts)
		m.state.SuccessCount++
	case "error":
		m.state.LastFailure = cloneTime(&ts)
		m.state.FailureCount++
	}
}

// RecordEvent records a generic monitoring event and persists the state.
func (m *Monitor) RecordEvent(eventType, message string, metadata map[string]any) {
	ts := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordEventLocked(ts, eventType, message, metadata)
	m.saveStateLocked()
}

// RecordRun records the outcome of a scheduled run under the given
// label, replacing any prior outcome for that label, and records a
// matching event so the outcome also appears in the bounded history.
func (m *Monitor) RecordRun(label, status, message string, metadata map[string]any) {
	ts := time.Now().UTC()
	outcome := RunOutcome{
		Status:    status,
		Timestamp: ts,
		Message:   message,
		Metadata:  metadata,
	}

	var eventType string
	switch status {
	case "success":
		eventType = "success"
	case "error":
		eventType = "error"
	case "warning":
		eventType = "warning"
	default:
		eventType = "info"
	}

	if message == "" {
		message = fmt.Sprintf("%s run reported %s", label, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Runs[label] = outcome
	m.recordEventLocked(ts, eventType, message, metadata)
	m.saveStateLocked()
}

// GetState returns a deep copy of the current monitoring state.
func (m *Monitor) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}
