package panelstate

import (
	"context"
	"path/filepath"
	"testing"

	"targetwatch/pkg/db"
	"targetwatch/pkg/migration"
)

func openTestStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migration.NewRunner(database).Run(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return NewSQLiteStore(database)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		value string
		state State
		ok    bool
	}{
		{"true", Collapsed, true},
		{"false", Expanded, true},
		{"", Expanded, false},
		{"TRUE", Expanded, false},
		{"1", Expanded, false},
	}
	for _, tt := range tests {
		state, ok := Decode(tt.value)
		if state != tt.state || ok != tt.ok {
			t.Errorf("Decode(%q) = (%v, %v), want (%v, %v)", tt.value, state, ok, tt.state, tt.ok)
		}
	}

	if Collapsed.Encode() != "true" || Expanded.Encode() != "false" {
		t.Error("Encode must produce the literal strings true/false")
	}
	if Key("7") != "isCollapsed_7" {
		t.Errorf("Unexpected key %q", Key("7"))
	}
}

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	store := openTestStore(t, path)

	if _, ok, err := store.Load(ctx, "7"); err != nil || ok {
		t.Fatalf("Expected no stored state, got ok=%v err=%v", ok, err)
	}

	if err := store.Save(ctx, "7", Collapsed); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "7", Expanded); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := store.Get(ctx, "isCollapsed_7")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if raw != "false" {
		t.Errorf("Expected raw value \"false\", got %q", raw)
	}

	// A second store on the same file sees the value, as after a restart.
	reopened := openTestStore(t, path)
	state, ok, err := reopened.Load(ctx, "7")
	if err != nil || !ok || state != Expanded {
		t.Errorf("Expected persisted Expanded, got %v ok=%v err=%v", state, ok, err)
	}
}

func TestSQLiteStore_UnrecognisedValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "prefs.db"))

	if err := store.Set(ctx, Key("3"), "maybe"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Load(ctx, "3"); err != nil || ok {
		t.Errorf("Expected unrecognised value to read as absent, ok=%v err=%v", ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, "a", Collapsed); err != nil {
		t.Fatal(err)
	}
	if raw, ok := store.Raw("a"); !ok || raw != "true" {
		t.Errorf("Expected raw \"true\", got %q ok=%v", raw, ok)
	}

	store.SetRaw("b", "false")
	state, ok, _ := store.Load(ctx, "b")
	if !ok || state != Expanded {
		t.Errorf("Expected Expanded, got %v ok=%v", state, ok)
	}
}
