package tui

import (
	"targetwatch/config"
	"targetwatch/internal/pause"
	"targetwatch/internal/report"
)

// animTickMsg advances the transition with the given id.
type animTickMsg struct {
	id       int
	targetID string
}

type pauseResultMsg struct{ result pause.Result }

type reportResultMsg struct{ result report.Result }

type configReloadedMsg struct {
	dashboard *config.Dashboard
	err       error
}
