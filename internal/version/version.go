// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as a single human-readable line,
// e.g. "1.4.2 (a1b2c3d, 2026-08-30)".
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
