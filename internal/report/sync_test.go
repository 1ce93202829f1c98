package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"targetwatch/internal/pubsub"
	"targetwatch/internal/viewmodel"
	"targetwatch/pkg/db"
	"targetwatch/pkg/migration"
)

func openHistory(t *testing.T) *History {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := migration.NewRunner(database).Run(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return NewHistory(database)
}

type applier struct {
	applied []string
}

func (a *applier) ApplyStoredState(_ context.Context, targetID string) error {
	a.applied = append(a.applied, targetID)
	return nil
}

func TestSyncer_ResyncOnlyTouchesTarget(t *testing.T) {
	ctx := context.Background()
	board := newBoard()
	history := openHistory(t)
	panels := &applier{}

	seven, _ := board.Target("7")
	eight, _ := board.Target("8")
	seven.SetReportState(viewmodel.ReportGenerating)
	eight.SetReportState(viewmodel.ReportGenerating)

	at := time.Unix(1_700_000_000, 0)
	s := NewSyncer(board, panels, history)
	if err := s.Resync(ctx, pubsub.TargetRef{Instance: "inst", TargetID: "7", At: at}); err != nil {
		t.Fatalf("Resync failed: %v", err)
	}

	if seven.ReportState() != viewmodel.ReportIdle || !seven.LastReport.Equal(at) {
		t.Errorf("Expected target 7 idle with report time, got %+v %v", seven.Report, seven.LastReport)
	}
	if eight.ReportState() != viewmodel.ReportGenerating {
		t.Error("Target 8 must not be touched")
	}
	if len(panels.applied) != 1 || panels.applied[0] != "7" {
		t.Errorf("Expected panel state re-applied for 7 only, got %v", panels.applied)
	}

	last, ok, err := history.Last(ctx, "7")
	if err != nil || !ok || !last.Equal(at) {
		t.Errorf("Expected recorded history, got %v ok=%v err=%v", last, ok, err)
	}
}

func TestLoadHistory(t *testing.T) {
	ctx := context.Background()
	history := openHistory(t)
	at := time.Unix(1_700_000_500, 0)
	if err := history.Record(ctx, pubsub.TargetRef{Instance: "inst", TargetID: "8", At: at}); err != nil {
		t.Fatal(err)
	}

	board := newBoard()
	if err := LoadHistory(ctx, history, board); err != nil {
		t.Fatal(err)
	}
	eight, _ := board.Target("8")
	seven, _ := board.Target("7")
	if !eight.LastReport.Equal(at) || !seven.LastReport.IsZero() {
		t.Errorf("Unexpected report times: 7=%v 8=%v", seven.LastReport, eight.LastReport)
	}

	if _, ok, err := history.Last(ctx, "7"); ok || err != nil {
		t.Errorf("Expected no history for 7, ok=%v err=%v", ok, err)
	}
}
