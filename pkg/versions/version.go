// Package versions provides version information for the quiver binary.
package versions

import (
	"fmt"
	"runtime"
	"strings"
)

const unknownStr = "unknown"

// Version information set by build using -ldflags.
var (
	// Version is the current version of quiver.
	Version = "dev"
	// Commit is the git commit hash of the build.
	Commit = unknownStr
	// BuildDate is the date the binary was built.
	BuildDate = unknownStr
)

// VersionInfo represents the version information of the binary.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the version information of the binary.
func GetVersionInfo() VersionInfo {
	version := Version
	if version == "dev" {
		// For development builds, derive a pseudo-version from the commit.
		if Commit != unknownStr && len(Commit) >= 8 {
			version = "build-" + Commit[:8]
		} else {
			version = "build-unknown"
		}
	}

	buildDate := BuildDate
	if buildDate != unknownStr {
		buildDate = strings.ReplaceAll(strings.ReplaceAll(buildDate, "T", " "), "Z", " UTC")
	}

	return VersionInfo{
		Version:   version,
		Commit:    Commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
