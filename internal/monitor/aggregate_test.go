package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoadAllSkipsMalformedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 0)
	m.RecordEvent("success", "posted", nil)

	if err := os.WriteFile(filepath.Join(dir, "broken_status.json"), []byte("{oops"), 0644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}
	// Unrelated files in the directory are ignored entirely.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}

	states := LoadAll(zerolog.Nop(), dir)
	if got, want := len(states), 1; got != want {
		t.Fatalf("expected %d parsed document, got %d", want, got)
	}
	if states[0].BotName != "stockbot" {
		t.Fatalf("expected stockbot document, got %q", states[0].BotName)
	}
}

func TestLoadAllSkipsNonObjectFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 0)
	m.RecordEvent("success", "posted", nil)

	// Valid JSON, but not objects: these must not surface as ghost
	// documents with an empty bot name.
	for name, payload := range map[string]string{
		"null_status.json": "null",
		"list_status.json": `[{"bot_name": "sneaky"}]`,
		"text_status.json": `"just a string"`,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(payload), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	states := LoadAll(zerolog.Nop(), dir)
	if got, want := len(states), 1; got != want {
		t.Fatalf("expected %d document, got %d", want, got)
	}
	if states[0].BotName != "stockbot" {
		t.Fatalf("expected stockbot document, got %q", states[0].BotName)
	}
}

func TestLoadAllMissingDirectory(t *testing.T) {
	t.Parallel()

	states := LoadAll(zerolog.Nop(), filepath.Join(t.TempDir(), "does-not-exist"))
	if len(states) != 0 {
		t.Fatalf("expected empty result for missing directory, got %d", len(states))
	}
}

func TestLoadAllFilenameOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Created out of order on purpose.
	for _, name := range []string{"zebra", "alpha", "mango"} {
		m := New(zerolog.Nop(), name, dir, 0)
		m.RecordEvent("info", "hello", nil)
	}

	states := LoadAll(zerolog.Nop(), dir)
	if got, want := len(states), 3; got != want {
		t.Fatalf("expected %d documents, got %d", want, got)
	}
	order := []string{"alpha", "mango", "zebra"}
	for i, want := range order {
		if states[i].BotName != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, states[i].BotName)
		}
	}
}

func TestLoadAllSeesCompleteDocumentsDuringWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := New(zerolog.Nop(), "stockbot", dir, 0)
	m.RecordEvent("info", "initial", nil)

	stop := make(chan struct{})
	go func() {
		defer close(stop)
		for i := 0; i < 50; i++ {
			m.RecordEvent("success", "posted", nil)
		}
	}()

	// Every concurrent read must observe a complete document: the
	// atomic rename means a reader sees either the old or new file.
	for i := 0; i < 50; i++ {
		states := LoadAll(zerolog.Nop(), dir)
		if len(states) != 1 {
			t.Fatalf("read %d: expected 1 valid document, got %d", i, len(states))
		}
		if states[0].BotName != "stockbot" {
			t.Fatalf("read %d: incomplete document: %+v", i, states[0])
		}
	}
	<-stop
}
