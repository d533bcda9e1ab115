// Package semver resolves the next release version from the previous release,
// the labels of the merged pull requests and any explicit overrides.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Version is a major.minor.patch triple with an optional pre-release suffix.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

// candidatePattern finds the first version-looking substring, so that tags
// such as "v2.1.1-alpha" and names such as "v2.1.1 (Code name: X)" parse.
var candidatePattern = regexp.MustCompile(`(\d+)(\.\d+)?(\.\d+)?(-[0-9A-Za-z-]+(\.[0-9A-Za-z-]+)*)?`)

// Parse extracts and parses the leading semantic version found in s.
func Parse(s string) (Version, error) {
	candidate := candidatePattern.FindString(s)
	if candidate == "" {
		return Version{}, fmt.Errorf("no version found in %q", s)
	}

	v, err := goversion.NewVersion(candidate)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", candidate, err)
	}

	segments := v.Segments()
	for len(segments) < 3 {
		segments = append(segments, 0)
	}

	return Version{
		Major:      segments[0],
		Minor:      segments[1],
		Patch:      segments[2],
		Prerelease: strings.TrimSuffix(v.Prerelease(), "-"),
	}, nil
}

// MustParse is like Parse but panics on error. It is intended for constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Full returns "major.minor.patch".
func (v Version) Full() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MajorMinor returns "major.minor".
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// MajorOnly returns "major".
func (v Version) MajorOnly() string {
	return strconv.Itoa(v.Major)
}

// String returns the full version including any pre-release suffix.
func (v Version) String() string {
	if v.Prerelease != "" {
		return v.Full() + "-" + v.Prerelease
	}
	return v.Full()
}

// Bump identifies which version component to increment.
type Bump string

const (
	BumpMajor Bump = "major"
	BumpMinor Bump = "minor"
	BumpPatch Bump = "patch"
)

// ParseBump normalizes a configured bump. An empty value selects BumpPatch.
func ParseBump(s string) (Bump, error) {
	switch Bump(strings.ToLower(strings.TrimSpace(s))) {
	case "", BumpPatch:
		return BumpPatch, nil
	case BumpMinor:
		return BumpMinor, nil
	case BumpMajor:
		return BumpMajor, nil
	default:
		return "", fmt.Errorf("invalid version bump %q (must be major, minor or patch)", s)
	}
}

// Inc returns the version incremented by b. A pre-release is promoted to
// its release rather than skipped, e.g. 3.0.0-beta bumps to 3.0.0 for major.
func (v Version) Inc(b Bump) Version {
	pre := v.Prerelease != ""
	switch b {
	case BumpMajor:
		if pre && v.Minor == 0 && v.Patch == 0 {
			return Version{Major: v.Major}
		}
		return Version{Major: v.Major + 1}
	case BumpMinor:
		if pre && v.Patch == 0 {
			return Version{Major: v.Major, Minor: v.Minor}
		}
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		if pre {
			return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
		}
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}
