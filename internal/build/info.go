// Package build exposes build-time metadata injected via ldflags.
package build

import "fmt"

// Version, Commit, and Branch are set at build time by:
//
//	-ldflags "-X github.com/slyyfoxx/foxxtalk/internal/build.Version=... ..."
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)

// String formats the metadata for `foxxtalk version` and the startup log.
func String() string {
	return fmt.Sprintf("%s (commit %s, branch %s)", Version, Commit, Branch)
}
