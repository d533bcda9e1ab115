package semver

import (
	"fmt"

	"github.com/andywolf/release-drafter/internal/labels"
	"github.com/andywolf/release-drafter/internal/model"
)

// DefaultBase is the version assumed when there is no previous release.
const DefaultBase = "0.0.0"

// VersionParseError is returned when an explicit version or tag override
// does not contain a semantic version.
type VersionParseError struct {
	Source string // "version", "tag" or "base"
	Input  string
	Err    error
}

func (e *VersionParseError) Error() string {
	return fmt.Sprintf("cannot resolve %s %q as a semantic version: %v", e.Source, e.Input, e.Err)
}

func (e *VersionParseError) Unwrap() error {
	return e.Err
}

// Rules maps labels to version bumps.
type Rules struct {
	Major   labels.Set
	Minor   labels.Set
	Patch   labels.Set
	Default Bump
}

// BumpFor returns the bump of the first rule, in major, minor, patch order,
// whose labels intersect those of any pull request. Default applies when
// nothing matches.
func (r Rules) BumpFor(prs []model.PullRequest) Bump {
	ordered := []struct {
		bump Bump
		set  labels.Set
	}{
		{BumpMajor, r.Major},
		{BumpMinor, r.Minor},
		{BumpPatch, r.Patch},
	}
	for _, rule := range ordered {
		for _, pr := range prs {
			if rule.set.Intersects(pr.Labels) {
				return rule.bump
			}
		}
	}
	if r.Default == "" {
		return BumpPatch
	}
	return r.Default
}

// Input carries everything the resolver needs.
type Input struct {
	// PreviousTag and PreviousName come from the last release, if any.
	PreviousTag  string
	PreviousName string
	HasPrevious  bool

	// Base is the starting version when there is no previous release.
	Base string

	PullRequests []model.PullRequest
	Rules        Rules

	VersionOverride string
	TagOverride     string
	NameOverride    string

	// FallbackOnInvalid continues down the precedence chain instead of
	// failing when a version or tag override does not parse.
	FallbackOnInvalid bool
}

// Source records which rule of the precedence chain produced the resolved version.
type Source string

const (
	SourceVersionOverride Source = "version-override"
	SourceTagOverride     Source = "tag-override"
	SourceNameOverride    Source = "name-override"
	SourceLabels          Source = "labels"
)

// Versions is the outcome of Resolve.
type Versions struct {
	Previous  Version
	NextMajor Version
	NextMinor Version
	NextPatch Version

	// Input is the version taken from an override, if any.
	Input    *Version
	Resolved Version
	Bump     Bump
	Source   Source
}

// Resolve computes the previous version, the three bump candidates and the
// resolved next version. Precedence, highest first: explicit version
// override, version found in the tag override, version found in the name
// override, label-driven bump of the previous version.
func Resolve(in Input) (*Versions, error) {
	previous, err := previousVersion(in)
	if err != nil {
		return nil, err
	}

	bump := in.Rules.BumpFor(in.PullRequests)
	out := &Versions{
		Previous:  previous,
		NextMajor: previous.Inc(BumpMajor),
		NextMinor: previous.Inc(BumpMinor),
		NextPatch: previous.Inc(BumpPatch),
		Bump:      bump,
		Resolved:  previous.Inc(bump),
		Source:    SourceLabels,
	}

	overrides := []struct {
		source Source
		name   string
		value  string
		strict bool
	}{
		{SourceVersionOverride, "version", in.VersionOverride, true},
		{SourceTagOverride, "tag", in.TagOverride, true},
		{SourceNameOverride, "name", in.NameOverride, false},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		v, err := Parse(o.value)
		if err != nil {
			if o.strict && !in.FallbackOnInvalid {
				return nil, &VersionParseError{Source: o.name, Input: o.value, Err: err}
			}
			continue
		}
		out.Input = &v
		out.Resolved = v
		out.Source = o.source
		break
	}

	return out, nil
}

func previousVersion(in Input) (Version, error) {
	if in.HasPrevious {
		if v, err := Parse(in.PreviousTag); err == nil {
			return v, nil
		}
		if v, err := Parse(in.PreviousName); err == nil {
			return v, nil
		}
	}

	base := in.Base
	if base == "" {
		base = DefaultBase
	}
	v, err := Parse(base)
	if err != nil {
		return Version{}, &VersionParseError{Source: "base", Input: base, Err: err}
	}
	return v, nil
}
