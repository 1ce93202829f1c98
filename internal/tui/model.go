package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"targetwatch/config"
	"targetwatch/internal/panel"
	"targetwatch/internal/panelstate"
	"targetwatch/internal/pause"
	"targetwatch/internal/pubsub"
	"targetwatch/internal/report"
	"targetwatch/internal/viewmodel"
)

// Remote is the backend used for pause and report requests.
type Remote interface {
	pause.Toggler
	report.Generator
}

// Deps are the collaborators of the dashboard model.
type Deps struct {
	Dashboard *config.Dashboard
	Store     panelstate.Store
	History   *report.History
	Remote    Remote
}

// liveBoard lets controllers outlive a config reload: they resolve targets
// through it and the model swaps the board underneath.
type liveBoard struct {
	*viewmodel.Board
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx       context.Context
	dashboard *config.Dashboard
	deps      Deps

	board   *liveBoard
	panels  *panel.Manager
	pauses  *pause.Controller
	reports *report.Requester
	syncer  *report.Syncer

	transitions map[string]*panel.Transition

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	styles  styles

	cursor    int
	width     int
	height    int
	status    string
	statusErr bool
}

// New builds the model and reconciles every panel with the store.
func New(ctx context.Context, deps Deps) (*Model, error) {
	if deps.Dashboard == nil || deps.Store == nil || deps.Remote == nil {
		return nil, errors.New("tui: dashboard, store and remote are required")
	}

	board := &liveBoard{Board: viewmodel.NewBoard(deps.Dashboard)}
	panels := panel.NewManager(board, deps.Store, panelOptions(deps.Dashboard))

	m := &Model{
		ctx:         ctx,
		dashboard:   deps.Dashboard,
		deps:        deps,
		board:       board,
		panels:      panels,
		pauses:      pause.NewController(board, deps.Remote),
		syncer:      report.NewSyncer(board, panels, deps.History),
		transitions: make(map[string]*panel.Transition),
		keys:        defaultKeys,
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:      newStyles(),
	}
	// Resolve runs on the update loop, so ReportReady is handled in place.
	m.reports = report.NewRequester(board, deps.Remote, pubsub.PublisherFunc[pubsub.TargetRef](m.onTargetEvent))

	if err := panels.ApplyAll(ctx, board.Board); err != nil {
		return nil, fmt.Errorf("apply stored panel state: %w", err)
	}
	if err := report.LoadHistory(ctx, deps.History, board.Board); err != nil {
		return nil, err
	}
	return m, nil
}

func panelOptions(d *config.Dashboard) panel.Options {
	return panel.Options{Padding: d.UI.PanelPadding, Frames: d.UI.AnimationFrames}
}

func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// onTargetEvent re-synchronizes the target a finished report belongs to.
func (m *Model) onTargetEvent(t pubsub.EventType, ref pubsub.TargetRef) {
	if t != pubsub.ReportReady {
		return
	}
	if err := m.syncer.Resync(m.ctx, ref); err != nil {
		m.setError(fmt.Sprintf("refresh %s failed: %v", ref.TargetID, err))
		return
	}
	m.setStatus(fmt.Sprintf("report ready for %s", ref.TargetID))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case animTickMsg:
		return m, m.advance(msg)

	case pauseResultMsg:
		state, err := m.pauses.Resolve(msg.result)
		if err != nil {
			m.setError(fmt.Sprintf("pause %s failed: %v", msg.result.TargetID, err))
		} else {
			m.setStatus(fmt.Sprintf("%s is now %s", msg.result.TargetID, state))
		}
		return m, nil

	case reportResultMsg:
		if err := m.reports.Resolve(msg.result); err != nil {
			m.setError(fmt.Sprintf("report %s failed: %v", msg.result.TargetID, err))
		}
		return m, nil

	case configReloadedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("config reload failed: %v", msg.err))
			return m, nil
		}
		if err := m.reload(msg.dashboard); err != nil {
			m.setError(fmt.Sprintf("config reload failed: %v", err))
			return m, nil
		}
		m.setStatus("config reloaded")
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.board.Len()-1 {
			m.cursor++
		}
		return nil
	}

	t := m.selected()
	if t == nil {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m.toggle(t.ID)
	case key.Matches(msg, m.keys.Pause):
		return m.requestPause(t.Instance, t.ID)
	case key.Matches(msg, m.keys.Report):
		return m.requestReport(t.Instance, t.ID)
	}
	return nil
}

func (m *Model) selected() *viewmodel.Target {
	targets := m.board.Targets()
	if len(targets) == 0 {
		return nil
	}
	if m.cursor >= len(targets) {
		m.cursor = len(targets) - 1
	}
	return targets[m.cursor]
}

// toggle flips a panel and schedules the first animation frame for the next
// tick, so the starting height is rendered before it changes.
func (m *Model) toggle(targetID string) tea.Cmd {
	tr, err := m.panels.Toggle(m.ctx, targetID)
	if err != nil {
		m.setError(fmt.Sprintf("toggle %s: %v", targetID, err))
	}
	if tr == nil {
		return nil
	}
	m.transitions[targetID] = tr
	return m.tick(tr)
}

func (m *Model) tick(tr *panel.Transition) tea.Cmd {
	id, targetID := tr.ID(), tr.TargetID()
	return tea.Tick(m.dashboard.AnimationInterval(), func(time.Time) tea.Msg {
		return animTickMsg{id: id, targetID: targetID}
	})
}

func (m *Model) advance(msg animTickMsg) tea.Cmd {
	tr, ok := m.transitions[msg.targetID]
	if !ok || tr.ID() != msg.id {
		// Superseded by a newer toggle.
		return nil
	}
	if tr.Advance() {
		delete(m.transitions, msg.targetID)
		return nil
	}
	return m.tick(tr)
}

func (m *Model) requestPause(instance, targetID string) tea.Cmd {
	ctx, pauses := m.ctx, m.pauses
	m.setStatus(fmt.Sprintf("toggling pause for %s...", targetID))
	return func() tea.Msg {
		return pauseResultMsg{result: pauses.Request(ctx, instance, targetID)}
	}
}

func (m *Model) requestReport(instance, targetID string) tea.Cmd {
	if err := m.reports.Begin(targetID); err != nil {
		m.setError(fmt.Sprintf("report %s: %v", targetID, err))
		return nil
	}
	ctx, reports := m.ctx, m.reports
	return func() tea.Msg {
		return reportResultMsg{result: reports.Request(ctx, instance, targetID)}
	}
}

// reload swaps in a board built from dashboard. Targets that survive keep
// their pause label, report button, panel geometry and report time.
func (m *Model) reload(dashboard *config.Dashboard) error {
	old := m.board.Board
	next := viewmodel.NewBoard(dashboard)

	var fresh []string
	for _, t := range next.Targets() {
		prev, err := old.Target(t.ID)
		if err != nil {
			fresh = append(fresh, t.ID)
			continue
		}
		t.Icon = prev.Icon
		t.Panel = prev.Panel
		t.Pause = prev.Pause
		t.Report = prev.Report
		t.LastReport = prev.LastReport
	}

	m.board.Board = next
	m.dashboard = dashboard
	m.panels = panel.NewManager(m.board, m.deps.Store, panelOptions(dashboard))
	m.syncer = report.NewSyncer(m.board, m.panels, m.deps.History)

	for id, tr := range m.transitions {
		t, err := next.Target(id)
		if err != nil {
			delete(m.transitions, id)
			continue
		}
		// The transition still points at the old handle.
		tr.Finish()
		prev, _ := old.Target(id)
		t.Panel = prev.Panel
		delete(m.transitions, id)
	}

	for _, id := range fresh {
		if err := m.panels.ApplyStoredState(m.ctx, id); err != nil {
			return err
		}
	}
	if m.cursor >= next.Len() {
		m.cursor = max(0, next.Len()-1)
	}
	return nil
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}
