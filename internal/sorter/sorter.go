// Package sorter orders pull requests for rendering.
package sorter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andywolf/release-drafter/internal/model"
)

// By is the sort key.
type By string

// Direction is the sort direction.
type Direction string

const (
	ByMergedAt By = "merged_at"
	ByTitle    By = "title"

	Descending Direction = "descending"
	Ascending  Direction = "ascending"
)

// ParseBy normalizes a configured sort key. An empty value selects ByMergedAt.
func ParseBy(s string) (By, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "merged_at", "merged-at", "mergedat":
		return ByMergedAt, nil
	case "title":
		return ByTitle, nil
	default:
		return "", fmt.Errorf("invalid sort-by %q (must be merged_at or title)", s)
	}
}

// ParseDirection normalizes a configured direction. An empty value selects Descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "descending", "desc":
		return Descending, nil
	case "ascending", "asc":
		return Ascending, nil
	default:
		return "", fmt.Errorf("invalid sort-direction %q (must be ascending or descending)", s)
	}
}

// Sort returns a sorted copy of prs. Pull requests with equal keys are
// ordered by ascending number in both directions.
func Sort(prs []model.PullRequest, by By, dir Direction) []model.PullRequest {
	out := append([]model.PullRequest(nil), prs...)

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], by)
		if c == 0 {
			return out[i].Number < out[j].Number
		}
		if dir == Ascending {
			return c < 0
		}
		return c > 0
	})

	return out
}

func compare(a, b model.PullRequest, by By) int {
	if by == ByTitle {
		return strings.Compare(a.Title, b.Title)
	}
	switch {
	case a.MergedAt.Before(b.MergedAt):
		return -1
	case a.MergedAt.After(b.MergedAt):
		return 1
	default:
		return 0
	}
}
