package version

import "fmt"

// Set at build time via -ldflags "-X targetwatch/version.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String renders the build information for `targetwatch --version`.
func String() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	switch {
	case Commit != "" && Date != "":
		return fmt.Sprintf("%s (%s, built %s)", v, Commit, Date)
	case Commit != "":
		return fmt.Sprintf("%s (%s)", v, Commit)
	}
	return v
}
