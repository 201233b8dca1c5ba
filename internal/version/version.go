// Package version provides build-time version information.
package version

import "fmt"

// Set at build time, e.g.
//
//	go build -ldflags "-X touch-calibrator/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// String returns a one-line description for -version output and artifact
// headers.
func String() string {
	if GitCommit == "unknown" {
		return "touch-calibrator " + Version
	}
	return fmt.Sprintf("touch-calibrator %s (%s, built %s)", Version, GitCommit, BuildTime)
}
