// Package version reports which build of the spider is running.
package version

import "runtime/debug"

// Version and Commit are set at build time via ldflags:
//
//	-X github.com/alvmarrod/web-spider/internal/version.Version=v1.2.0
var (
	Version = ""
	Commit  = ""
)

// String returns the version. Priority: ldflags > module build info > "(devel)"
func String() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "(devel)"
}

// ShortCommit returns the abbreviated VCS revision, or "unknown"
func ShortCommit() string {
	commit := Commit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					commit = setting.Value
				}
			}
		}
	}
	if commit == "" {
		return "unknown"
	}
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
