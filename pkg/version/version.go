// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X github.com/Sumatoshi-tech/roadsplit/pkg/version.Version=v1.2.3"
package version

import (
	"fmt"
	"runtime/debug"
)

const unknown = "unknown"

// Build metadata. Overridden with -ldflags -X.
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills metadata that was not injected at link time from
// the module build info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("roadsplit %s (commit: %s, built: %s)", Version, Commit, Date)
}
