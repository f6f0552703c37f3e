package tableau

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

const (
	// probeAPIVersion is the oldest version that serves /serverinfo.
	probeAPIVersion = "2.4"
	// legacyAPIVersion is assumed when /serverinfo does not exist.
	legacyAPIVersion = "2.3"
	// minPATAPIVersion is the first version accepting personal access tokens.
	minPATAPIVersion = "3.6"
)

var (
	version     string
	versionOnce sync.Once
	// commitHash can be set at build time via ldflags: -ldflags "-X github.com/tabrefresh/tabrefresh/tableau.commitHash=abc1234"
	commitHash string
)

// GetVersion returns the client version detected from module info.
func GetVersion() string {
	versionOnce.Do(func() {
		version = detectVersion()
	})
	return version
}

func detectVersion() string {
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range buildInfo.Deps {
			if strings.Contains(dep.Path, "tabrefresh/tabrefresh") {
				if dep.Version != "" && dep.Version != "(devel)" {
					return strings.TrimPrefix(dep.Version, "v")
				}
			}
		}
		if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			return strings.TrimPrefix(buildInfo.Main.Version, "v")
		}
	}
	return "dev"
}

// GetOsArch returns the operating system and architecture
func GetOsArch() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// GetCommitHash returns the commit hash from build-time injection
func GetCommitHash() string {
	if commitHash != "" {
		if len(commitHash) > 7 {
			return commitHash[:7]
		}
		return commitHash
	}
	return "unknown"
}

func userAgent() string {
	return fmt.Sprintf("tabrefresh/%s (%s) tabrefresh/%s", GetVersion(), GetOsArch(), GetCommitHash())
}

// SupportsPAT reports whether a REST API version accepts personal access
// token sign-in. Unparseable versions are rejected.
func SupportsPAT(apiVersion string) bool {
	v, err := semver.NewVersion(apiVersion)
	if err != nil {
		return false
	}
	return !v.LessThan(semver.MustParse(minPATAPIVersion))
}

func checkPATVersion(apiVersion string) error {
	if SupportsPAT(apiVersion) {
		return nil
	}
	return fmt.Errorf("%w: server REST API %s does not support personal access token sign-in (requires %s or later)",
		ErrUnsupportedVersion, apiVersion, minPATAPIVersion)
}
