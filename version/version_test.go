package version

import (
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	origVersion, origCommit, origTime := Version, GitCommit, BuildTime
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() {
		readBuildInfo = orig
		Version, GitCommit, BuildTime = origVersion, origCommit, origTime
	})
}

func TestGet_Table(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		commit    string
		bi        *debug.BuildInfo
		ok        bool
		wantShort string
	}{
		{
			name:      "no build info",
			version:   "dev",
			ok:        false,
			wantShort: "dev",
		},
		{
			name:      "module version used for dev builds",
			version:   "dev",
			bi:        &debug.BuildInfo{Main: debug.Module{Version: "v1.4.0"}},
			ok:        true,
			wantShort: "1.4.0",
		},
		{
			name:    "devel module version ignored",
			version: "dev",
			bi: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}, Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "true"},
			}},
			ok:        true,
			wantShort: "dev-0123456-dirty",
		},
		{
			name:      "link-time values win",
			version:   "2.0.0",
			commit:    "abc1234",
			bi:        &debug.BuildInfo{Main: debug.Module{Version: "v1.4.0"}, Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "fffffff"}}},
			ok:        true,
			wantShort: "2.0.0-abc1234",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubBuildInfo(t, tt.bi, tt.ok)
			Version, GitCommit, BuildTime = tt.version, tt.commit, ""

			if got := Get().Short(); got != tt.wantShort {
				t.Errorf("Short() = %q, want %q", got, tt.wantShort)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	info := Info{Version: "1.0.0", GitCommit: "abc1234", BuildTime: "2024-01-15T10:30:00Z", GoVersion: "go1.26.0"}
	want := "1.0.0-abc1234 (built 2024-01-15T10:30:00Z) go1.26.0"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUserAgent(t *testing.T) {
	stubBuildInfo(t, nil, false)
	Version, GitCommit = "1.2.3", ""
	if got := UserAgent(); got != "llmaid/1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}
