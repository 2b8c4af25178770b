package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestGetFallsBackToModuleInfo(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}, true)

	got := Get()
	want := Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestGetPrefersLdflags(t *testing.T) {
	origVersion, origCommit := Version, Commit
	Version, Commit = "v1.0.0", "deadbeef"
	t.Cleanup(func() { Version, Commit = origVersion, origCommit })

	withBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}, true)

	got := Get()
	if got.Version != "v1.0.0" || got.Commit != "deadbeef" {
		t.Errorf("Get() = %+v, want ldflags values", got)
	}
}

func TestGetDevelBuild(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)
	if got := Get().Version; got != "dev" {
		t.Errorf("Version = %q, want dev", got)
	}

	withBuildInfo(t, nil, false)
	if got := Get(); got != (Info{Version: "dev", Commit: "none", Date: "unknown"}) {
		t.Errorf("Get() without build info = %+v", got)
	}
}

func TestTemplate(t *testing.T) {
	withBuildInfo(t, nil, false)
	if got := Template(); !strings.HasPrefix(got, "tooltree dev\ncommit: none") {
		t.Errorf("Template() = %q", got)
	}
}
