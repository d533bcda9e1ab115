// Package model defines the commit and pull request records shared by the
// release note pipeline.
package model

import "time"

// PullRequest captures the pull request metadata needed to render a change entry.
type PullRequest struct {
	Number         int
	Title          string
	Body           string
	URL            string
	AuthorLogin    string
	MergedAt       time.Time
	Labels         []string
	IsFork         bool
	BaseRepository string // owner/name the pull request was merged into
	BaseRef        string
	HeadRef        string
}

// Commit is a single commit on the target reference together with the pull
// requests the hosting platform reports as associated with it.
type Commit struct {
	SHA         string
	Message     string
	AuthorLogin string // empty when the git author has no platform account
	AuthorName  string
	CommittedAt time.Time

	AssociatedPullRequests []PullRequest
}

// ShortSHA returns the abbreviated commit hash.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	for i := 0; i < len(c.Message); i++ {
		if c.Message[i] == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// CommitPage is one cursor-paginated page of commit history, newest first.
type CommitPage struct {
	Commits     []Commit
	HasNextPage bool
	EndCursor   string
}
