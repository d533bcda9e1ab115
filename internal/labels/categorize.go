package labels

import "github.com/andywolf/release-drafter/internal/model"

// Category is a named group triggered by any of its labels.
type Category struct {
	Title  string
	Labels Set
}

// Section is a category together with the pull requests placed in it.
type Section struct {
	Title        string
	PullRequests []model.PullRequest
}

// Categorized is the outcome of Categorize.
type Categorized struct {
	// Uncategorized holds pull requests that match no category.
	Uncategorized []model.PullRequest
	// Sections has one entry per category, in declaration order, including
	// categories that matched nothing.
	Sections []Section
}

// Categorize places each pull request in every category whose labels it
// intersects. Membership in named sections is not exclusive; membership in
// the uncategorized bucket is. The input order is preserved inside every
// section.
func Categorize(prs []model.PullRequest, categories []Category) Categorized {
	result := Categorized{Sections: make([]Section, len(categories))}
	for i, c := range categories {
		result.Sections[i].Title = c.Title
	}

	for _, pr := range prs {
		matched := false
		for i, c := range categories {
			if c.Labels.Intersects(pr.Labels) {
				result.Sections[i].PullRequests = append(result.Sections[i].PullRequests, pr)
				matched = true
			}
		}
		if !matched {
			result.Uncategorized = append(result.Uncategorized, pr)
		}
	}

	return result
}

// Empty reports whether no pull request was placed anywhere.
func (c Categorized) Empty() bool {
	if len(c.Uncategorized) > 0 {
		return false
	}
	for _, s := range c.Sections {
		if len(s.PullRequests) > 0 {
			return false
		}
	}
	return true
}
