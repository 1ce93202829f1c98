package viewmodel

import "strings"

// Element id prefixes shared with the server-rendered dashboard markup.
const (
	toggleButtonPrefix = "toggle_button_"
	detailsPrefix      = "details_"
	pauseButtonPrefix  = "pause_button_"
	reportButtonPrefix = "report_button_"
)

func ToggleButtonID(targetID string) string { return toggleButtonPrefix + targetID }
func DetailsID(targetID string) string      { return detailsPrefix + targetID }
func PauseButtonID(targetID string) string  { return pauseButtonPrefix + targetID }
func ReportButtonID(targetID string) string { return reportButtonPrefix + targetID }

// TargetFromElementID recovers the target id from any element id.
func TargetFromElementID(elementID string) (string, bool) {
	// toggle_button_ must be tried before the shorter prefixes.
	for _, prefix := range []string{toggleButtonPrefix, pauseButtonPrefix, reportButtonPrefix, detailsPrefix} {
		if id, ok := strings.CutPrefix(elementID, prefix); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
