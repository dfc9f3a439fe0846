package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestRecordEventBoundedHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 5)

	for i := 0; i < 12; i++ {
		m.RecordEvent("info", fmt.Sprintf("event %d", i), nil)
	}

	state := m.GetState()
	if got, want := len(state.Events), 5; got != want {
		t.Fatalf("expected %d events, got %d", want, got)
	}
	// Only the most recent events survive, in call order.
	for i, e := range state.Events {
		want := fmt.Sprintf("event %d", 7+i)
		if e.Message != want {
			t.Fatalf("event %d: expected message %q, got %q", i, want, e.Message)
		}
	}
}

func TestRecordEventCounters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 0)

	m.RecordEvent("success", "posted", nil)
	m.RecordEvent("error", "publish failed", nil)
	m.RecordEvent("warning", "stale data", nil)
	m.RecordEvent("info", "heartbeat", nil)
	m.RecordEvent("success", "posted again", nil)

	state := m.GetState()
	if state.SuccessCount != 2 {
		t.Fatalf("expected success_count 2, got %d", state.SuccessCount)
	}
	if state.FailureCount != 1 {
		t.Fatalf("expected failure_count 1, got %d", state.FailureCount)
	}
	if state.LastSuccess == nil || state.LastFailure == nil || state.LastUpdated == nil {
		t.Fatal("expected last_success, last_failure and last_updated to be set")
	}
	if state.LastSuccess.Before(*state.LastFailure) {
		t.Fatal("expected last_success to be at or after last_failure")
	}
}

func TestRecordRunUpsert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 0)

	m.RecordRun("morning", "error", "publish failed", nil)
	m.RecordRun("morning", "success", "", map[string]any{"post_chars": 240})

	state := m.GetState()
	if got, want := len(state.Runs), 1; got != want {
		t.Fatalf("expected %d run label, got %d", want, got)
	}
	run, ok := state.Runs["morning"]
	if !ok {
		t.Fatal("expected runs to contain morning")
	}
	if run.Status != "success" {
		t.Fatalf("expected latest outcome to win, got status %q", run.Status)
	}
	// Each RecordRun also appends one event.
	if got, want := len(state.Events), 2; got != want {
		t.Fatalf("expected %d events, got %d", want, got)
	}
	if state.Events[1].Message != "morning run reported success" {
		t.Fatalf("expected default run message, got %q", state.Events[1].Message)
	}
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 0)
	m.RecordEvent("success", "posted", nil)
	m.RecordRun("evening", "skipped", "market closed", nil)

	reloaded := New(zerolog.Nop(), "stockbot", dir, 0)
	state := reloaded.GetState()

	if state.SuccessCount != 1 {
		t.Fatalf("expected success_count 1 after reload, got %d", state.SuccessCount)
	}
	if got, want := len(state.Events), 2; got != want {
		t.Fatalf("expected %d events after reload, got %d", want, got)
	}
	run, ok := state.Runs["evening"]
	if !ok || run.Status != "skipped" {
		t.Fatalf("expected evening run to survive reload, got %+v", state.Runs)
	}
	// A skipped run maps to an info event, not a counter change.
	if state.FailureCount != 0 {
		t.Fatalf("expected failure_count 0, got %d", state.FailureCount)
	}
}

func TestLoadRepairsPartialDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	partial := []byte(`{"bot_name": "stockbot", "success_count": 7}`)
	if err := os.WriteFile(StatusFilePath(dir, "stockbot"), partial, 0644); err != nil {
		t.Fatalf("write partial state: %v", err)
	}

	m := New(zerolog.Nop(), "stockbot", dir, 0)
	state := m.GetState()

	if state.SuccessCount != 7 {
		t.Fatalf("expected existing success_count preserved, got %d", state.SuccessCount)
	}
	if state.Events == nil || state.Runs == nil {
		t.Fatal("expected missing fields to be repaired with defaults")
	}
	if state.LastUpdated != nil {
		t.Fatal("expected last_updated to remain null")
	}
}

func TestLoadMalformedFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(StatusFilePath(dir, "stockbot"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write malformed state: %v", err)
	}

	m := New(zerolog.Nop(), "stockbot", dir, 0)
	state := m.GetState()

	if state.BotName != "stockbot" {
		t.Fatalf("expected default bot_name, got %q", state.BotName)
	}
	if state.SuccessCount != 0 || state.FailureCount != 0 {
		t.Fatal("expected fresh counters after malformed load")
	}
}

func TestGetStateSnapshotIsolation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 0)
	m.RecordEvent("success", "posted", map[string]any{"chars": 240})

	snap := m.GetState()
	snap.Events[0].Metadata["chars"] = 0
	snap.SuccessCount = 99
	snap.Runs["fake"] = RunOutcome{Status: "error"}

	state := m.GetState()
	if state.SuccessCount != 1 {
		t.Fatalf("snapshot mutation leaked into success_count: %d", state.SuccessCount)
	}
	if got := state.Events[0].Metadata["chars"]; got != 240 {
		t.Fatalf("snapshot mutation leaked into event metadata: %v", got)
	}
	if _, ok := state.Runs["fake"]; ok {
		t.Fatal("snapshot mutation leaked into runs map")
	}
}

func TestSavedDocumentShape(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 0)
	m.RecordRun("morning", "success", "", nil)

	data, err := os.ReadFile(StatusFilePath(dir, "stockbot"))
	if err != nil {
		t.Fatalf("read status file: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse status file: %v", err)
	}
	for _, key := range []string{
		"bot_name", "last_updated", "last_success", "last_failure",
		"success_count", "failure_count", "events", "runs",
	} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("expected key %q in persisted document", key)
		}
	}

	// No leftover temp file after an atomic save.
	if _, err := os.Stat(filepath.Join(dir, "stockbot_status.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err: %v", err)
	}
}

func TestConcurrentRecordersSerialize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 200)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 25; i++ {
				m.RecordEvent("success", "posted", nil)
			}
		}()
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	state := m.GetState()
	if state.SuccessCount != 100 {
		t.Fatalf("expected success_count 100, got %d", state.SuccessCount)
	}
	if got, want := len(state.Events), 100; got != want {
		t.Fatalf("expected %d events, got %d", want, got)
	}
}
