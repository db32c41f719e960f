package version

import (
	"runtime/debug"
	"testing"
)

func TestGetUsesLinkTimeValues(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "1.2.0"
	GitCommit = "0123456789abcdef"
	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("expected 1.2.0, got %q", info.Version)
	}
	if info.GitCommit != "0123456" {
		t.Errorf("expected short commit, got %q", info.GitCommit)
	}
}

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name    string
		start   Info
		bi      debug.BuildInfo
		version string
		commit  string
		dirty   bool
	}{
		{
			name:    "dev falls back to module version",
			start:   Info{Version: "dev"},
			bi:      debug.BuildInfo{GoVersion: "go1.26.0", Main: debug.Module{Version: "v0.3.0"}},
			version: "v0.3.0",
		},
		{
			name:    "devel module keeps dev",
			start:   Info{Version: "dev"},
			bi:      debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			version: "dev",
		},
		{
			name:  "vcs settings",
			start: Info{Version: "1.0.0"},
			bi: debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abcdef0123"},
				{Key: "vcs.modified", Value: "true"},
			}},
			version: "1.0.0",
			commit:  "abcdef0123",
			dirty:   true,
		},
		{
			name:    "link-time commit wins",
			start:   Info{Version: "1.0.0", GitCommit: "feed"},
			bi:      debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abcdef"}}},
			version: "1.0.0",
			commit:  "feed",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := tc.start
			fromBuildInfo(&info, &tc.bi)
			if info.Version != tc.version || info.GitCommit != tc.commit || info.Dirty != tc.dirty {
				t.Errorf("expected %s/%s/%v, got %+v", tc.version, tc.commit, tc.dirty, info)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	if (Info{Version: "dev"}).IsRelease() {
		t.Error("dev is not a release")
	}
	if (Info{Version: "1.0.0", Dirty: true}).IsRelease() {
		t.Error("a dirty tree is not a release")
	}
	if !(Info{Version: "1.0.0"}).IsRelease() {
		t.Error("expected a clean tagged build to be a release")
	}
	if got := (Info{Version: "1.0.0", GitCommit: "abc1234"}).String(); got != "1.0.0 (abc1234)" {
		t.Errorf("unexpected string %q", got)
	}
}
