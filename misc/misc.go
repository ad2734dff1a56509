// Package misc holds program identification used for file names and
// document metadata.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "mdocx"

var (
	version = "dev"
	gitHash = ""

	buildOnce sync.Once
)

func readBuildInfo() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		version = v
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			gitHash = s.Value
		}
	}
}

// GetAppName returns short program name.
func GetAppName() string {
	return appName
}

// GetVersion returns module version recorded at build time or "dev".
func GetVersion() string {
	buildOnce.Do(readBuildInfo)
	return version
}

// GetGitHash returns VCS revision if build info has it.
func GetGitHash() string {
	buildOnce.Do(readBuildInfo)
	return gitHash
}
