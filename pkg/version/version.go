// Package version holds build metadata set through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func String() string {
	return fmt.Sprintf("lockwatch %s (commit: %s, built: %s, %s)", Version, Commit, BuildTime, runtime.Version())
}

// UserAgent is sent with outgoing vendor API and webhook requests.
func UserAgent() string {
	return "lockwatch/" + Version
}
