// Package buildinfo reports which tooltree build is running.
//
// Release builds set the variables via ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/tooltree/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/tooltree/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/tooltree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries installed with "go install" carry no ldflags; [Get] then falls
// back to the module version and VCS stamps embedded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info describes a build. The API server reports it on /health.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var readBuildInfo = debug.ReadBuildInfo

// Get returns the build information, filling unset ldflags values from the
// embedded module and VCS information when available.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

// String returns the build information as printed by "tooltree --version".
func (i Info) String() string {
	return fmt.Sprintf("tooltree %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template for the current build.
func Template() string {
	return Get().String() + "\n"
}
