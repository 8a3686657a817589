package context

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// VersionInfo describes the build of the running binary.
type VersionInfo struct {
	Semantic string
	Commit   string
	Dirty    bool
	Go       string
}

// String returns the version in "<semver> (<commit>[-dirty], <go version>)"
// format. The parenthesized part is omitted if the commit is unknown.
func (v *VersionInfo) String() string {
	if v.Commit == "" {
		return v.Semantic
	}

	commit := v.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if v.Dirty {
		commit += "-dirty"
	}

	return fmt.Sprintf("%s (%s, %s)", v.Semantic, commit, v.Go)
}

// GetVersion returns the version information embedded by the Go toolchain.
func GetVersion() (*VersionInfo, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.New("failed reading build information")
	}

	v := &VersionInfo{
		Semantic: strings.TrimPrefix(bi.Main.Version, "v"),
		Go:       bi.GoVersion,
	}
	if v.Semantic == "" || v.Semantic == "(devel)" {
		v.Semantic = "devel"
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Commit = s.Value
		case "vcs.modified":
			v.Dirty = s.Value == "true"
		}
	}

	return v, nil
}
