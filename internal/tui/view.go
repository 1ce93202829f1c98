package tui

import (
	"strings"
	"time"

	"targetwatch/internal/timeutil"
	"targetwatch/internal/viewmodel"
)

func (m *Model) View() string {
	var lines []string
	cursorLine := 0

	lines = append(lines, m.styles.Title.Render("targetwatch")+"  "+m.styles.Muted.Render(m.dashboard.Server.BaseURL), "")

	index := 0
	for _, inst := range m.board.Instances() {
		lines = append(lines, m.styles.Instance.Render("▌ "+inst.Name))
		for _, t := range inst.Targets {
			if index == m.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, m.renderTarget(t, index == m.cursor))
			lines = append(lines, m.renderDetails(t)...)
			index++
		}
		lines = append(lines, "")
	}
	if index == 0 {
		lines = append(lines, m.styles.Muted.Render("no targets configured"))
	}

	footer := []string{m.renderStatus(), m.help.View(m.keys)}
	return strings.Join(append(m.window(lines, cursorLine, len(footer)), footer...), "\n")
}

// window keeps the selected target on screen when the list is taller than
// the terminal.
func (m *Model) window(lines []string, cursorLine, reserved int) []string {
	avail := m.height - reserved
	if m.height == 0 || avail <= 0 || len(lines) <= avail {
		return lines
	}
	start := cursorLine - avail/2
	if start < 0 {
		start = 0
	}
	if start+avail > len(lines) {
		start = len(lines) - avail
	}
	return lines[start : start+avail]
}

func (m *Model) renderTarget(t *viewmodel.Target, selected bool) string {
	cursor := "  "
	nameStyle := m.styles.Target
	if selected {
		cursor = "> "
		nameStyle = m.styles.Selected
	}

	icon := "▸"
	if t.Icon == viewmodel.Rotated {
		icon = "▾"
	}

	pauseStyle := m.styles.Button
	if t.PauseState() == viewmodel.Paused {
		pauseStyle = m.styles.ButtonPaused
	}

	var reportBtn string
	if t.Report.Enabled {
		reportBtn = m.styles.Button.Render("[" + t.Report.Label + "]")
	} else {
		reportBtn = m.styles.Disabled.Render(m.spinner.View() + " " + t.Report.Label)
	}

	row := cursor + m.styles.Icon.Render(icon) + " " + nameStyle.Render(t.Name) +
		" " + m.styles.Muted.Render("#"+t.ID) +
		" " + pauseStyle.Render("["+t.Pause.Label+"]") +
		reportBtn

	if !t.LastReport.IsZero() {
		row += " " + m.styles.Muted.Render("last report " + timeutil.FormatAge(t.LastReport, time.Now()))
	}
	return row
}

// renderDetails clips the panel body to the handle's current height.
func (m *Model) renderDetails(t *viewmodel.Target) []string {
	height := t.RenderedHeight()
	if height <= 0 {
		return nil
	}

	body := make([]string, 0, t.ContentHeight())
	for i := 0; i < t.Panel.Padding; i++ {
		body = append(body, "")
	}
	if len(t.Details) == 0 {
		body = append(body, m.styles.Muted.Render("no details"))
	}
	body = append(body, t.Details...)
	for i := 0; i < t.Panel.Padding; i++ {
		body = append(body, "")
	}
	if height < len(body) {
		body = body[:height]
	}

	border := m.styles.borderColor(1, true)
	if tr, ok := m.transitions[t.ID]; ok {
		border = m.styles.borderColor(tr.Progress(), tr.Expanding())
	}
	style := m.styles.Details.BorderForeground(border).PaddingLeft(1 + t.Panel.Padding)

	rendered := style.Render(strings.Join(body, "\n"))
	out := strings.Split(rendered, "\n")
	for i := range out {
		out[i] = "    " + out[i]
	}
	for i := 0; i < t.Panel.Margin; i++ {
		out = append(out, "")
	}
	return out
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.styles.Error.Render(m.status)
	}
	return m.styles.Status.Render(m.status)
}
