package panel

import (
	"math"
	"sync/atomic"

	"targetwatch/internal/viewmodel"
)

// Transition ids let the UI drop ticks addressed to a transition that was
// superseded by a newer toggle of the same panel.
var lastID int64

func nextID() int { return int(atomic.AddInt64(&lastID, 1)) }

// Transition animates a panel's height over a fixed number of frames. The
// first height change happens on the first Advance, never when the
// transition is created.
type Transition struct {
	id       int
	target   *viewmodel.Target
	from, to int
	frames   int
	frame    int
	// expand transitions settle at auto height so refreshed content is not
	// clipped by a stale measurement.
	expand bool
}

func newTransition(target *viewmodel.Target, from, to, frames int, expand bool) *Transition {
	if frames < 1 {
		frames = 1
	}
	return &Transition{
		id:     nextID(),
		target: target,
		from:   from,
		to:     to,
		frames: frames,
		expand: expand,
	}
}

func (tr *Transition) ID() int          { return tr.id }
func (tr *Transition) TargetID() string { return tr.target.ID }
func (tr *Transition) From() int        { return tr.from }
func (tr *Transition) To() int          { return tr.to }
func (tr *Transition) Expanding() bool  { return tr.expand }
func (tr *Transition) Done() bool       { return tr.frame >= tr.frames }

// Progress is the eased completion in [0, 1].
func (tr *Transition) Progress() float64 {
	return easeOutCubic(float64(tr.frame) / float64(tr.frames))
}

// Advance applies the next frame and reports whether the transition is done.
func (tr *Transition) Advance() bool {
	if tr.Done() {
		return true
	}
	tr.frame++
	if tr.Done() {
		tr.settle()
		return true
	}
	delta := float64(tr.to-tr.from) * tr.Progress()
	tr.target.Panel.Height = tr.from + int(math.Round(delta))
	return false
}

// Finish jumps to the final frame.
func (tr *Transition) Finish() {
	tr.frame = tr.frames
	tr.settle()
}

func (tr *Transition) settle() {
	if tr.expand {
		tr.target.Panel.Height = viewmodel.HeightAuto
		return
	}
	tr.target.Panel.Height = tr.to
}

func easeOutCubic(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return 1 - math.Pow(1-p, 3)
}
