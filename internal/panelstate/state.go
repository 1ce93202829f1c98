// Package panelstate persists the collapsed/expanded state of target detail
// panels. Values are stored under "isCollapsed_<target id>" as the literal
// strings "true" or "false" so existing stores remain readable.
package panelstate

import "context"

// State is the persisted state of one detail panel.
type State int

const (
	Expanded State = iota
	Collapsed
)

func (s State) String() string {
	if s == Collapsed {
		return "collapsed"
	}
	return "expanded"
}

// Encode returns the stored form of s.
func (s State) Encode() string {
	if s == Collapsed {
		return "true"
	}
	return "false"
}

// Decode parses a stored value. Anything other than "true" or "false" is
// treated as absent.
func Decode(value string) (State, bool) {
	switch value {
	case "true":
		return Collapsed, true
	case "false":
		return Expanded, true
	default:
		return Expanded, false
	}
}

// Key returns the store key for targetID.
func Key(targetID string) string {
	return "isCollapsed_" + targetID
}

// Store reads and writes panel states by target id.
type Store interface {
	// Load returns the stored state; ok is false when nothing is stored.
	Load(ctx context.Context, targetID string) (state State, ok bool, err error)
	Save(ctx context.Context, targetID string, state State) error
}
