// Package version reports the build that produced the binary.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Set with -ldflags "-X github.com/andywolf/release-drafter/internal/version.Version=v1.0.0".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

const name = "release-drafter"

// Build describes one binary.
type Build struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// Current returns the build of the running binary.
func Current() Build {
	return Build{
		Version:   strings.TrimSpace(Version),
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// ShortCommit is the commit abbreviated to seven characters.
func (b Build) ShortCommit() string {
	if len(b.Commit) > 7 {
		return b.Commit[:7]
	}
	return b.Commit
}

// UserAgent is sent with every GitHub request.
func (b Build) UserAgent() string {
	return name + "/" + b.Version
}

// Info is the one-line form printed by `version`.
func (b Build) Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		name, b.Version, b.ShortCommit(), b.BuildDate, b.GoVersion)
}

// Full is the multi-line form printed by `version --full`.
func (b Build) Full() string {
	return strings.Join([]string{
		name + " " + b.Version,
		"  Commit:     " + b.Commit,
		"  Built:      " + b.BuildDate,
		"  Go version: " + b.GoVersion,
		"  OS/Arch:    " + b.Platform,
	}, "\n")
}

// Short returns the version string.
func Short() string { return Current().Version }

// UserAgent returns the user agent of the running binary.
func UserAgent() string { return Current().UserAgent() }
