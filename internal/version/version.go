// Package version carries build metadata injected with -ldflags:
//
//	-X github.com/MrSnakeDoc/auctionsync/internal/version.Version=v0.1.0
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   = "dev" // ex: v0.1.0
	Commit    = ""    // ex: abcd123, falls back to the VCS stamp
	BuildDate = ""    // ex: 2025-08-11T18:42:00Z
)

// Info is the build metadata reported by the health probes.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns the linked metadata, completed from the binary's embedded
// VCS settings when -ldflags left fields empty.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = shortRev(s.Value)
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			}
		}
	}
	return info
}

func (i Info) String() string {
	commit := i.Commit
	if commit == "" {
		commit = "none"
	}
	return fmt.Sprintf("%s (commit=%s, built=%s, go=%s)", i.Version, commit, i.BuildDate, i.GoVersion)
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
