package session

import (
	"testing"
	"time"

	"github.com/szaher/finsight/internal/engine"
	"github.com/szaher/finsight/internal/llm"
)

func TestNewIDUniqueAndSortable(t *testing.T) {
	a := NewID()
	b := NewID()
	if a == b {
		t.Fatalf("ids collide: %s", a)
	}
	if len(a) != 26 {
		t.Errorf("id length = %d, want 26", len(a))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rec := &Record{
		ID:       NewID(),
		Query:    "What moved AAPL today?",
		Answer:   "Earnings beat expectations.",
		Terminal: engine.TerminalDone,
		Transcript: []engine.Entry{
			{Role: llm.RoleUser, Text: "What moved AAPL today?"},
			{Role: llm.RoleAssistant, Text: "Earnings beat expectations."},
		},
		StartedAt: time.Now().Add(-time.Minute).UTC(),
		EndedAt:   time.Now().UTC(),
		Turns:     1,
	}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(rec.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Answer != rec.Answer || got.Terminal != engine.TerminalDone {
		t.Errorf("loaded = %+v", got)
	}
	if len(got.Transcript) != 2 || got.Transcript[0].Role != llm.RoleUser {
		t.Errorf("transcript = %+v", got.Transcript)
	}
}

func TestSaveEmptyID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Save(&Record{}); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestListOldestFirst(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	first := NewID()
	second := NewID()
	// Save out of order; List must sort by ID (ULIDs are time-ordered).
	for _, id := range []string{second, first} {
		if err := store.Save(&Record{ID: id, Terminal: engine.TerminalDone}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	records, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID != first || records[1].ID != second {
		t.Errorf("order = %s, %s", records[0].ID, records[1].ID)
	}
}

func TestLoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Load("01J00000000000000000000000"); err == nil {
		t.Error("expected error for missing session")
	}
}
