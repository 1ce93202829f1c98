// Package panel toggles target detail panels between collapsed and expanded,
// persisting the choice so it can be re-applied on the next start.
package panel

import (
	"context"
	"log/slog"

	"targetwatch/internal/metrics"
	"targetwatch/internal/panelstate"
	"targetwatch/internal/viewmodel"
)

// Options configure a Manager.
type Options struct {
	// Padding applied to an expanded panel, in lines.
	Padding int
	// Frames per collapse/expand animation.
	Frames int
}

// Manager owns panel toggling and load-time reconciliation.
type Manager struct {
	targets viewmodel.Lookup
	store   panelstate.Store
	opts    Options
}

func NewManager(targets viewmodel.Lookup, store panelstate.Store, opts Options) *Manager {
	if opts.Frames < 1 {
		opts.Frames = 1
	}
	return &Manager{targets: targets, store: store, opts: opts}
}

// Toggle flips the panel of targetID and persists the new state. The
// returned transition carries the height animation; the handle's collapsed
// marker, icon and padding are already updated. A persistence failure is
// returned alongside a usable transition so the UI still completes.
func (m *Manager) Toggle(ctx context.Context, targetID string) (*Transition, error) {
	t, err := m.targets.Target(targetID)
	if err != nil {
		return nil, err
	}

	t.Icon = t.Icon.Flipped()

	var (
		tr    *Transition
		state panelstate.State
	)
	if t.Panel.Collapsed {
		t.SetCollapsed(false)
		t.Panel.Padding = m.opts.Padding
		measured := t.ContentHeight()
		t.Panel.Height = 0
		tr = newTransition(t, 0, measured, m.opts.Frames, true)
		state = panelstate.Expanded
	} else {
		// Pin the current height so the animation has a concrete start.
		start := t.RenderedHeight()
		t.Panel.Height = start
		tr = newTransition(t, start, 0, m.opts.Frames, false)
		t.SetCollapsed(true)
		state = panelstate.Collapsed
	}

	metrics.PanelTogglesTotal.WithLabelValues(state.String()).Inc()
	slog.Debug("panel toggled", "target", targetID, "element", viewmodel.ToggleButtonID(targetID), "state", state, "from", tr.From(), "to", tr.To())

	if err := m.store.Save(ctx, targetID, state); err != nil {
		return tr, err
	}
	return tr, nil
}

// ApplyStoredState applies the persisted state of targetID without any
// animation. With nothing stored the handle is left untouched.
func (m *Manager) ApplyStoredState(ctx context.Context, targetID string) error {
	t, err := m.targets.Target(targetID)
	if err != nil {
		return err
	}

	state, ok, err := m.store.Load(ctx, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	switch state {
	case panelstate.Collapsed:
		t.Icon = viewmodel.Unrotated
		t.SetCollapsed(true)
		t.Panel.Height = 0
		t.Panel.Padding = 0
		t.Panel.Margin = 0
	case panelstate.Expanded:
		t.Icon = viewmodel.Rotated
		t.SetCollapsed(false)
		t.Panel.Height = viewmodel.HeightAuto
		t.Panel.Padding = m.opts.Padding
	}
	slog.Debug("panel state applied", "target", targetID, "element", viewmodel.DetailsID(targetID), "state", state)
	return nil
}

// ApplyAll reconciles every handle of the board with the store.
func (m *Manager) ApplyAll(ctx context.Context, board *viewmodel.Board) error {
	for _, t := range board.Targets() {
		if err := m.ApplyStoredState(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}
