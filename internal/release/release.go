// Package release selects the last published and the current draft release
// and decides whether a run creates a new draft or updates the existing one.
package release

import (
	"sort"
	"time"
)

// Release is a release as reported by the hosting platform.
type Release struct {
	ID              int64
	TagName         string
	Name            string
	Body            string
	Draft           bool
	Prerelease      bool
	TargetCommitish string
	CreatedAt       time.Time
	PublishedAt     time.Time
	HTMLURL         string
	UploadURL       string
}

// Options narrows which releases count as the last release.
type Options struct {
	// ExcludePrereleases skips prereleases when picking the last release.
	ExcludePrereleases bool
	// FilterByCommitish only considers releases targeting Commitish.
	FilterByCommitish bool
	Commitish         string
}

// FindReleases returns the most recently created non-draft release matching
// opts and the most recently created draft. Either may be nil. Ties on
// CreatedAt go to the greatest ID.
func FindReleases(releases []Release, opts Options) (last, draft *Release) {
	sorted := make([]Release, len(releases))
	copy(sorted, releases)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	for i := range sorted {
		r := &sorted[i]
		if r.Draft {
			if draft == nil {
				draft = r
			}
			continue
		}
		if last != nil {
			continue
		}
		if opts.ExcludePrereleases && r.Prerelease {
			continue
		}
		if opts.FilterByCommitish && !sameCommitish(r.TargetCommitish, opts.Commitish) {
			continue
		}
		last = r
	}
	return last, draft
}

// sameCommitish compares branch targets, ignoring a refs/heads/ prefix.
func sameCommitish(a, b string) bool {
	return trimHeads(a) == trimHeads(b)
}

func trimHeads(s string) string {
	const prefix = "refs/heads/"
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}
