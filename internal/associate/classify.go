// Package associate reconciles commit history with the pull requests that
// introduced it, across merge-commit, squash and rebase merge strategies.
package associate

import (
	"regexp"
	"strconv"

	"github.com/andywolf/release-drafter/internal/model"
)

// Kind identifies how a commit entered the target branch.
type Kind int

const (
	// Direct is a commit pushed without a resolvable pull request.
	Direct Kind = iota
	// MergeCommit is a "Merge pull request #N" commit.
	MergeCommit
	// Associated is a commit the platform reports as part of one or more
	// pull requests (squash and rebase merges).
	Associated
	// Squash is a commit whose message ends in "(#N)" but which carries no
	// platform association.
	Squash
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case MergeCommit:
		return "merge-commit"
	case Associated:
		return "associated"
	case Squash:
		return "squash"
	default:
		return "direct"
	}
}

// Classification is the result of classifying a single commit.
type Classification struct {
	Kind    Kind
	Numbers []int
}

var (
	mergeCommitPattern = regexp.MustCompile(`^Merge pull request #(\d+)`)
	squashPattern      = regexp.MustCompile(`\(#(\d+)\)\s*$`)
)

// Classify decides which pull requests a commit belongs to.
//
// The merge-commit message pattern wins over the platform association list,
// which in turn wins over a trailing "(#N)" squash marker. A number taken from
// the message is only kept when it resolves to a pull request found either in
// the commit's own association list or in known; otherwise the commit is
// treated as Direct.
func Classify(commit model.Commit, known map[int]model.PullRequest) Classification {
	if n, ok := messageNumber(mergeCommitPattern, commit.Message); ok {
		if resolvable(n, commit, known) {
			return Classification{Kind: MergeCommit, Numbers: []int{n}}
		}
	}

	if len(commit.AssociatedPullRequests) > 0 {
		numbers := make([]int, 0, len(commit.AssociatedPullRequests))
		for _, pr := range commit.AssociatedPullRequests {
			numbers = append(numbers, pr.Number)
		}
		return Classification{Kind: Associated, Numbers: numbers}
	}

	if n, ok := messageNumber(squashPattern, commit.Subject()); ok {
		if resolvable(n, commit, known) {
			return Classification{Kind: Squash, Numbers: []int{n}}
		}
	}

	return Classification{Kind: Direct}
}

func messageNumber(pattern *regexp.Regexp, text string) (int, bool) {
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func resolvable(n int, commit model.Commit, known map[int]model.PullRequest) bool {
	for _, pr := range commit.AssociatedPullRequests {
		if pr.Number == n {
			return true
		}
	}
	_, ok := known[n]
	return ok
}
