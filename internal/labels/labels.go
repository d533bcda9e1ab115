// Package labels implements the label-driven stages of the release note
// pipeline: exclude, include and categorize. Each stage is a pure function
// over pull requests so the pipeline reads as an ordered list of filters.
package labels

import "github.com/andywolf/release-drafter/internal/model"

// Set is an unordered set of label names.
type Set map[string]struct{}

// NewSet builds a Set from names, ignoring empty strings.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of labels in the set.
func (s Set) Len() int {
	return len(s)
}

// Intersects reports whether any of names is in the set.
func (s Set) Intersects(names []string) bool {
	if len(s) == 0 {
		return false
	}
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// Exclude drops every pull request carrying a label in exclude.
// An empty exclude set keeps everything.
func Exclude(prs []model.PullRequest, exclude Set) []model.PullRequest {
	out := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if exclude.Intersects(pr.Labels) {
			continue
		}
		out = append(out, pr)
	}
	return out
}

// Include keeps only pull requests carrying a label in include.
// An empty include set keeps everything.
func Include(prs []model.PullRequest, include Set) []model.PullRequest {
	if include.Len() == 0 {
		return append([]model.PullRequest(nil), prs...)
	}
	out := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if include.Intersects(pr.Labels) {
			out = append(out, pr)
		}
	}
	return out
}

// Filter runs the exclude pass followed by the include pass.
func Filter(prs []model.PullRequest, exclude, include Set) []model.PullRequest {
	return Include(Exclude(prs, exclude), include)
}
