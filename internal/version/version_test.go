package version

import (
	"runtime/debug"
	"testing"
)

func TestString(t *testing.T) {
	for _, tt := range []struct {
		info *debug.BuildInfo
		want string
	}{
		{
			info: &debug.BuildInfo{
				GoVersion: "go1.22.1",
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: "0123456 (modified), built with go1.22.1",
		},
		{
			info: &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc"},
					{Key: "vcs.modified", Value: "false"},
				},
			},
			want: "abc",
		},
		{
			info: &debug.BuildInfo{GoVersion: "go1.22.1"},
			want: "unknown, built with go1.22.1",
		},
	} {
		if got := fromBuildInfo(tt.info).String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
