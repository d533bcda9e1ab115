package associate

import (
	"time"

	"github.com/andywolf/release-drafter/internal/model"
)

// Result is the commit window together with the pull requests it introduced.
type Result struct {
	// Commits is every commit in the window, in server order.
	Commits []model.Commit
	// PullRequests is deduplicated by number, in first-seen order.
	PullRequests []model.PullRequest
	// Direct lists the commits that have no resolvable pull request.
	Direct []model.Commit
}

// Associate classifies every commit and collects the associated pull requests.
func Associate(commits []model.Commit) Result {
	known := indexPullRequests(commits)

	result := Result{Commits: commits}
	seen := make(map[int]bool, len(known))

	for _, commit := range commits {
		c := Classify(commit, known)
		if c.Kind == Direct {
			result.Direct = append(result.Direct, commit)
			continue
		}
		for _, n := range c.Numbers {
			if seen[n] {
				continue
			}
			pr, ok := lookup(n, commit, known)
			if !ok {
				continue
			}
			seen[n] = true
			result.PullRequests = append(result.PullRequests, pr)
		}
	}

	return result
}

// FilterPullRequests keeps the pull requests for which keep returns true.
// It is used by callers for policy filters such as fork exclusion.
func FilterPullRequests(prs []model.PullRequest, keep func(model.PullRequest) bool) []model.PullRequest {
	out := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if keep(pr) {
			out = append(out, pr)
		}
	}
	return out
}

// indexPullRequests returns every pull request reported anywhere in the
// window, keyed by number. The first occurrence wins.
func indexPullRequests(commits []model.Commit) map[int]model.PullRequest {
	known := make(map[int]model.PullRequest)
	for _, commit := range commits {
		for _, pr := range commit.AssociatedPullRequests {
			if _, ok := known[pr.Number]; !ok {
				known[pr.Number] = pr
			}
		}
	}
	return known
}

func lookup(n int, commit model.Commit, known map[int]model.PullRequest) (model.PullRequest, bool) {
	for _, pr := range commit.AssociatedPullRequests {
		if pr.Number == n {
			return pr, true
		}
	}
	pr, ok := known[n]
	return pr, ok
}

// Assembler concatenates commit pages in server order and trims them to the
// window that starts after Since.
type Assembler struct {
	since   time.Time
	commits []model.Commit
	done    bool
}

// NewAssembler creates an Assembler for commits strictly newer than since.
// A zero since keeps the full history.
func NewAssembler(since time.Time) *Assembler {
	return &Assembler{since: since}
}

// Add appends a page and reports whether more pages should be fetched.
//
// Commits committed at or before the boundary are dropped: the boundary commit
// already belongs to the previous release. Once a page reaches the boundary no
// further pages are accepted.
func (a *Assembler) Add(page model.CommitPage) bool {
	if a.done {
		return false
	}

	var oldest time.Time
	for i, commit := range page.Commits {
		if i == 0 || commit.CommittedAt.Before(oldest) {
			oldest = commit.CommittedAt
		}
		if !a.since.IsZero() && !commit.CommittedAt.After(a.since) {
			continue
		}
		a.commits = append(a.commits, commit)
	}

	reached := !a.since.IsZero() && len(page.Commits) > 0 && !oldest.After(a.since)

	if reached || !page.HasNextPage {
		a.done = true
	}
	return !a.done
}

// Commits returns the assembled window.
func (a *Assembler) Commits() []model.Commit {
	return a.commits
}
