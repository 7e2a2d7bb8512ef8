// Package buildinfo carries release metadata stamped in with -ldflags -X.
package buildinfo

import "fmt"

// Set by the release build, e.g.
// -ldflags "-X github.com/cleared-dev/ledgerly/internal/buildinfo.Version=v0.3.0".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the metadata for --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
