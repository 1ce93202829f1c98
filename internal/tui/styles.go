package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

var (
	colorPrimary = lipgloss.Color("#f7c0af")
	colorAccent  = lipgloss.Color("#3ccad7")
	colorMuted   = lipgloss.Color("240")
	colorError   = lipgloss.Color("#FE5F86")
	colorPaused  = lipgloss.Color("#f97316")

	borderIdle   = mustHex("#444444")
	borderActive = mustHex("#3ccad7")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

type styles struct {
	Title        lipgloss.Style
	Instance     lipgloss.Style
	Target       lipgloss.Style
	Selected     lipgloss.Style
	Icon         lipgloss.Style
	Button       lipgloss.Style
	ButtonPaused lipgloss.Style
	Disabled     lipgloss.Style
	Muted        lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	Details      lipgloss.Style

	// gradients is false on terminals without true colour; the panel
	// border then switches colour at the end of an animation instead of
	// blending through it.
	gradients bool
}

func newStyles() styles {
	return styles{
		Title:        lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Instance:     lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Target:       lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Icon:         lipgloss.NewStyle().Foreground(colorAccent),
		Button:       lipgloss.NewStyle().Foreground(colorAccent).Padding(0, 1),
		ButtonPaused: lipgloss.NewStyle().Foreground(colorPaused).Padding(0, 1),
		Disabled:     lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1),
		Muted:        lipgloss.NewStyle().Foreground(colorMuted),
		Status:       lipgloss.NewStyle().Foreground(colorMuted),
		Error:        lipgloss.NewStyle().Foreground(colorError),
		Details:      lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true),
		gradients:    termenv.ColorProfile() == termenv.TrueColor,
	}
}

// borderColor blends the panel border from idle to active as an expand
// animation progresses, and back while collapsing.
func (s styles) borderColor(progress float64, expanding bool) lipgloss.Color {
	if !expanding {
		progress = 1 - progress
	}
	if !s.gradients {
		if progress >= 1 {
			return lipgloss.Color(borderActive.Hex())
		}
		return lipgloss.Color(borderIdle.Hex())
	}
	return lipgloss.Color(borderIdle.BlendLab(borderActive, progress).Clamped().Hex())
}
