// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time:
// -X github.com/kailas-cloud/clipdex/internal/version.Version=...
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the metadata for the version command.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
