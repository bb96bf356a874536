// Package version reports chopper's build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// GetVersion returns the version string, preferring ldflags values and
// falling back to module build info for go install builds.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}

		var revision, modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}

		if revision != "" {
			v := revision
			if len(revision) > 7 {
				v = revision[:7]
			}
			if modified == "true" {
				v += "+dirty"
			}
			return v
		}
	}

	return Version
}

// GetBuildInfo returns the full multi-line build description.
func GetBuildInfo() string {
	v := GetVersion()

	if GitCommit != "unknown" && len(GitCommit) > 7 {
		v += fmt.Sprintf(" (commit: %s)", GitCommit[:7])
	} else if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) > 7 {
				v += fmt.Sprintf(" (commit: %s)", setting.Value[:7])
				break
			}
		}
	}

	buildDate := BuildDate
	if buildDate == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.time" {
					buildDate = setting.Value
					break
				}
			}
		}
	}

	return fmt.Sprintf(`chopper %s
Built with: %s
Build date: %s`, v, GoVersion, buildDate)
}
