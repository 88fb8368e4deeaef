package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	// Version is the application version, set via ldflags during build.
	Version = "dev"
	// GitCommit is the git commit hash, set via ldflags during build.
	GitCommit = "unknown"
	// BuildDate is the build timestamp, set via ldflags during build.
	BuildDate = "unknown"
	// BuildID is the build identifier, set via ldflags during build.
	BuildID = "unknown"
)

// Info contains version and build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	BuildID   string `json:"build_id"`
	GoVersion string `json:"go_version"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

var vcsOnce = sync.OnceValues(readVCS)

// readVCS returns the revision and commit time stamped by `go build`
// when ldflags were not used.
func readVCS() (revision, buildTime string) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.time":
			buildTime = s.Value
		}
	}
	return revision, buildTime
}

// Get returns version and build information.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		BuildID:   BuildID,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	revision, buildTime := vcsOnce()
	if info.GitCommit == "unknown" && revision != "" {
		info.GitCommit = revision
	}
	if info.BuildDate == "unknown" && buildTime != "" {
		info.BuildDate = buildTime
	}
	return info
}

// String returns the application version string.
func String() string {
	return Version
}

// UserAgent identifies blinkd in outgoing HTTP requests.
func UserAgent() string {
	return fmt.Sprintf("blinkd/%s (%s; %s)", Version, Get().GitCommit, Get().Platform)
}
