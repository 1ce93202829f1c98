package migration

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"targetwatch/pkg/db"
)

func TestRunner_AppliesAllMigrationsOnce(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	runner := NewRunner(database)

	for i := 0; i < 2; i++ {
		if err := runner.Run(ctx); err != nil {
			t.Fatalf("Run #%d failed: %v", i+1, err)
		}
	}

	migrations, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	version, dirty, err := runner.Version(ctx)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if dirty {
		t.Error("Expected a clean schema")
	}
	if want := migrations[len(migrations)-1].Version; version != want {
		t.Errorf("Expected version %d, got %d", want, version)
	}

	for _, table := range []string{"ui_preferences", "report_history"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s: %v", table, err)
		}
	}
}

func tableExists(t *testing.T, database *sql.DB, table string) bool {
	t.Helper()
	var n int
	err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n == 1
}

func TestRunner_DownRevertsNewestFirst(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	runner := NewRunner(database)
	if err := runner.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if err := runner.Down(ctx, 1); err != nil {
		t.Fatalf("Down(1) failed: %v", err)
	}
	if version, _, _ := runner.Version(ctx); version != 1 {
		t.Errorf("Expected version 1, got %d", version)
	}
	if tableExists(t, database, "report_history") || !tableExists(t, database, "ui_preferences") {
		t.Error("Expected only report_history dropped")
	}

	if err := runner.Down(ctx, 0); err != nil {
		t.Fatalf("Down(0) failed: %v", err)
	}
	if tableExists(t, database, "ui_preferences") {
		t.Error("Expected ui_preferences dropped")
	}

	// Migrating up again restores everything.
	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run after Down failed: %v", err)
	}
	if !tableExists(t, database, "report_history") {
		t.Error("Expected report_history recreated")
	}
}

func TestRunner_ForceClearsDirty(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	runner := NewRunner(database)
	if err := runner.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := database.Exec(`UPDATE schema_migrations SET dirty = TRUE WHERE version = 2`); err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(ctx); !errors.Is(err, ErrDirty) {
		t.Fatalf("Expected ErrDirty, got %v", err)
	}
	if err := runner.Down(ctx, 0); !errors.Is(err, ErrDirty) {
		t.Fatalf("Expected ErrDirty from Down, got %v", err)
	}

	if err := runner.Force(ctx, 2); err != nil {
		t.Fatalf("Force failed: %v", err)
	}
	if err := runner.Run(ctx); err != nil {
		t.Errorf("Expected clean run after Force, got %v", err)
	}
	if err := runner.Force(ctx, 99); err == nil {
		t.Error("Expected error forcing an unrecorded version")
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		file      string
		version   int
		name      string
		direction string
		wantErr   bool
	}{
		{file: "001_ui_preferences.up.sql", version: 1, name: "ui_preferences", direction: "up"},
		{file: "002_report_history.down.sql", version: 2, name: "report_history", direction: "down"},
		{file: "003_x.sideways.sql", wantErr: true},
		{file: "abc_x.up.sql", wantErr: true},
		{file: "004.up.sql", wantErr: true},
	}

	for _, tt := range tests {
		version, name, direction, err := parseFilename(tt.file)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected an error", tt.file)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.file, err)
			continue
		}
		if version != tt.version || name != tt.name || direction != tt.direction {
			t.Errorf("%s: got (%d, %q, %q)", tt.file, version, name, direction)
		}
	}
}
