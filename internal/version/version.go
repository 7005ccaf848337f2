// Package version derives a version string for the ngram tools from the
// build information embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
)

type Info struct {
	Revision  string
	Modified  bool
	GoVersion string
}

func (i Info) String() string {
	rev := i.Revision
	if rev == "" {
		rev = "unknown"
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if i.Modified {
		rev += " (modified)"
	}
	if i.GoVersion == "" {
		return rev
	}
	return fmt.Sprintf("%s, built with %s", rev, i.GoVersion)
}

func fromBuildInfo(info *debug.BuildInfo) Info {
	settings := make(map[string]string)
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	return Info{
		Revision:  settings["vcs.revision"],
		Modified:  settings["vcs.modified"] == "true",
		GoVersion: info.GoVersion,
	}
}

func Read() Info {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{Revision: "<ReadBuildInfo() failed>"}
	}
	return fromBuildInfo(info)
}
