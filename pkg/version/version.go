// Package version carries build information set with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time:
//
//	go build -ldflags "-X github.com/ps-net-stats/pkg/version.Version=v1.2.0 -X github.com/ps-net-stats/pkg/version.Commit=abc123"
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// String returns a one-line summary for --version and the landing page.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
}
