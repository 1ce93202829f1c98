package report

import (
	"context"

	"targetwatch/internal/pubsub"
	"targetwatch/internal/viewmodel"
)

// PanelApplier re-applies persisted panel state.
type PanelApplier interface {
	ApplyStoredState(ctx context.Context, targetID string) error
}

// Syncer re-synchronizes one target after its report is ready, leaving every
// other handle untouched.
type Syncer struct {
	targets viewmodel.Lookup
	panels  PanelApplier
	history *History
}

// NewSyncer builds a Syncer; panels and history may be nil.
func NewSyncer(targets viewmodel.Lookup, panels PanelApplier, history *History) *Syncer {
	return &Syncer{targets: targets, panels: panels, history: history}
}

// Resync resets the report button, records the report time and re-applies
// the stored panel state of ref's target.
func (s *Syncer) Resync(ctx context.Context, ref pubsub.TargetRef) error {
	t, err := s.targets.Target(ref.TargetID)
	if err != nil {
		return err
	}

	t.SetReportState(viewmodel.ReportIdle)
	t.LastReport = ref.At

	if s.history != nil {
		if err := s.history.Record(ctx, ref); err != nil {
			return err
		}
	}
	if s.panels != nil {
		return s.panels.ApplyStoredState(ctx, ref.TargetID)
	}
	return nil
}

// LoadHistory copies recorded report times onto the board's handles.
func LoadHistory(ctx context.Context, history *History, board *viewmodel.Board) error {
	if history == nil {
		return nil
	}
	for _, t := range board.Targets() {
		at, ok, err := history.Last(ctx, t.ID)
		if err != nil {
			return err
		}
		if ok {
			t.LastReport = at
		}
	}
	return nil
}
