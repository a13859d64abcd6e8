package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// Info is the build metadata shown by `sglint version`.
type Info struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

// Current merges the ldflags values with the VCS stamps the Go toolchain
// records; ldflags win.
func Current() Info {
	info := Info{
		Tool:      "sglint",
		Version:   strings.TrimSpace(Version),
		GitCommit: strings.TrimSpace(GitCommit),
		BuildDate: strings.TrimSpace(BuildDate),
		GoVersion: runtime.Version(),
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fromSettings(bi.Settings)
	}
	return info
}

func (info *Info) fromSettings(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// ShortCommit returns the first 12 characters of the commit hash.
func (info Info) ShortCommit() string {
	if len(info.GitCommit) > 12 {
		return info.GitCommit[:12]
	}
	return info.GitCommit
}
