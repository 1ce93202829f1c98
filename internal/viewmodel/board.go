package viewmodel

import (
	"errors"
	"fmt"

	"targetwatch/config"
)

// ErrUnknownTarget is returned when no handle exists for a target id.
var ErrUnknownTarget = errors.New("unknown target")

// Instance is a named group of targets, in config order.
type Instance struct {
	Name    string
	Targets []*Target
}

// Board owns every Target handle of the dashboard.
type Board struct {
	instances []Instance
	targets   map[string]*Target
	order     []*Target
}

// NewBoard builds handles for every target in the dashboard, in the state a
// freshly rendered page would show: expanded, auto height, configured padding.
func NewBoard(dashboard *config.Dashboard) *Board {
	b := &Board{targets: make(map[string]*Target)}
	for _, inst := range dashboard.Instances {
		group := Instance{Name: inst.Name}
		for _, tc := range inst.Targets {
			t := &Target{
				ID:       tc.ID,
				Instance: inst.Name,
				Name:     tc.Name,
				Details:  append([]string(nil), tc.Details...),
				Icon:     Rotated,
				Panel: Panel{
					Height:  HeightAuto,
					Padding: dashboard.UI.PanelPadding,
				},
			}
			if t.Name == "" {
				t.Name = tc.ID
			}
			pause := Running
			if tc.Paused {
				pause = Paused
			}
			t.SetPauseLabel(pause)
			t.SetReportState(ReportIdle)

			group.Targets = append(group.Targets, t)
			b.targets[t.ID] = t
			b.order = append(b.order, t)
		}
		b.instances = append(b.instances, group)
	}
	return b
}

// Target returns the handle for targetID.
func (b *Board) Target(targetID string) (*Target, error) {
	t, ok := b.targets[targetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, targetID)
	}
	return t, nil
}

// Targets returns all handles in display order.
func (b *Board) Targets() []*Target {
	return b.order
}

// Instances returns the instance groups in display order.
func (b *Board) Instances() []Instance {
	return b.instances
}

// Len is the number of targets.
func (b *Board) Len() int {
	return len(b.order)
}

// Lookup resolves target handles; *Board implements it.
type Lookup interface {
	Target(targetID string) (*Target, error)
}
