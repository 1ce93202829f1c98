// Package viewmodel holds the headless projection of the dashboard: one
// Target handle per target id, carrying the toggle icon, the detail panel
// geometry and the pause and report buttons. Renderers read it; the panel,
// pause and report packages are the only writers.
package viewmodel

import (
	"fmt"
	"time"
)

// HeightAuto means the panel takes its natural content height.
const HeightAuto = -1

// Rotation is the toggle icon indicator.
type Rotation int

const (
	Unrotated Rotation = iota
	Rotated
)

func (r Rotation) String() string {
	if r == Rotated {
		return "rotate"
	}
	return "unrotate"
}

// Flipped returns the other rotation.
func (r Rotation) Flipped() Rotation {
	if r == Rotated {
		return Unrotated
	}
	return Rotated
}

// PauseState is what the pause button currently offers. The label is the
// state: a Running target shows "pause", a Paused target shows "resume".
type PauseState int

const (
	Running PauseState = iota
	Paused
)

const (
	PauseLabel  = "pause"
	ResumeLabel = "resume"
)

func (p PauseState) Label() string {
	if p == Paused {
		return ResumeLabel
	}
	return PauseLabel
}

func (p PauseState) String() string {
	if p == Paused {
		return "paused"
	}
	return "running"
}

// Flipped returns the other pause state.
func (p PauseState) Flipped() PauseState {
	if p == Paused {
		return Running
	}
	return Paused
}

// ReportState is the report button lifecycle.
type ReportState int

const (
	ReportIdle ReportState = iota
	ReportGenerating
)

const (
	ReportLabel           = "report"
	ReportGeneratingLabel = "generating report..."
)

func (r ReportState) String() string {
	if r == ReportGenerating {
		return "generating"
	}
	return "idle"
}

// Button is a labelled, possibly disabled, control.
type Button struct {
	Label   string
	Enabled bool
}

// Panel is the geometry of a detail panel, in terminal lines.
type Panel struct {
	Collapsed bool
	Height    int
	Padding   int
	Margin    int
}

// Target is the handle for one target.
type Target struct {
	ID       string
	Instance string
	Name     string
	Details  []string

	Icon   Rotation
	Panel  Panel
	Pause  Button
	Report Button

	LastReport time.Time
}

// SetCollapsed sets the panel's collapsed marker only; geometry is left to
// the caller.
func (t *Target) SetCollapsed(collapsed bool) {
	t.Panel.Collapsed = collapsed
}

// SetPauseLabel shows the label for state.
func (t *Target) SetPauseLabel(state PauseState) {
	t.Pause.Label = state.Label()
}

// PauseState reads the state back from the label. Any label other than
// "pause" reads as Paused, so a flip always lands on "pause" or "resume".
func (t *Target) PauseState() PauseState {
	if t.Pause.Label == PauseLabel {
		return Running
	}
	return Paused
}

// SetReportState projects state onto the report button.
func (t *Target) SetReportState(state ReportState) {
	switch state {
	case ReportGenerating:
		t.Report = Button{Label: ReportGeneratingLabel, Enabled: false}
	default:
		t.Report = Button{Label: ReportLabel, Enabled: true}
	}
}

// ReportState reads the state back from the button.
func (t *Target) ReportState() ReportState {
	if !t.Report.Enabled {
		return ReportGenerating
	}
	return ReportIdle
}

// ContentHeight is the natural height of the panel with its current padding,
// the equivalent of a DOM scrollHeight.
func (t *Target) ContentHeight() int {
	lines := len(t.Details)
	if lines == 0 {
		lines = 1
	}
	return lines + 2*t.Panel.Padding
}

// RenderedHeight is the height the panel currently occupies.
func (t *Target) RenderedHeight() int {
	if t.Panel.Height == HeightAuto {
		return t.ContentHeight()
	}
	return t.Panel.Height
}

func (t *Target) String() string {
	return fmt.Sprintf("%s/%s", t.Instance, t.ID)
}
