package github

import (
	"context"
	"fmt"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/andywolf/release-drafter/internal/model"
)

const commitsPerPage = 100

type labelNode struct {
	Name githubv4.String
}

type pullRequestNode struct {
	Number            githubv4.Int
	Title             githubv4.String
	Body              githubv4.String
	URL               githubv4.URI
	MergedAt          *githubv4.DateTime
	Merged            githubv4.Boolean
	IsCrossRepository githubv4.Boolean
	BaseRefName       githubv4.String
	HeadRefName       githubv4.String
	Author            struct {
		Login githubv4.String
	}
	BaseRepository struct {
		NameWithOwner githubv4.String
	}
	Labels struct {
		Nodes []labelNode
	} `graphql:"labels(first: 10)"`
}

type commitNode struct {
	Oid           githubv4.GitObjectID
	Message       githubv4.String
	CommittedDate githubv4.DateTime
	Author        struct {
		Name githubv4.String
		User *struct {
			Login githubv4.String
		}
	}
	AssociatedPullRequests struct {
		Nodes []pullRequestNode
	} `graphql:"associatedPullRequests(first: 5)"`
}

type historyQuery struct {
	Repository struct {
		Object struct {
			Commit struct {
				History struct {
					PageInfo struct {
						HasNextPage githubv4.Boolean
						EndCursor   githubv4.String
					}
					Nodes []commitNode
				} `graphql:"history(first: $pageSize, since: $since, after: $after)"`
			} `graphql:"... on Commit"`
		} `graphql:"object(expression: $ref)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// HistoryOptions select the commit window.
type HistoryOptions struct {
	Owner string
	Repo  string
	// Ref is the branch, tag or SHA whose history is read.
	Ref string
	// Since limits the history to commits after the last release. Zero reads
	// the full history.
	Since time.Time
}

// CommitHistory fetches commit pages newest first and hands each to yield
// until yield returns false or the history is exhausted. Pages are fetched
// sequentially because each cursor depends on the previous response.
func (c *Client) CommitHistory(ctx context.Context, opts HistoryOptions, yield func(model.CommitPage) bool) error {
	vars := map[string]interface{}{
		"owner":    githubv4.String(opts.Owner),
		"name":     githubv4.String(opts.Repo),
		"ref":      githubv4.String(opts.Ref),
		"pageSize": githubv4.Int(commitsPerPage),
		"since":    (*githubv4.GitTimestamp)(nil),
		"after":    (*githubv4.String)(nil),
	}
	if !opts.Since.IsZero() {
		vars["since"] = githubv4.NewGitTimestamp(githubv4.GitTimestamp{Time: opts.Since})
	}

	for {
		var q historyQuery
		if err := c.graphql.Query(ctx, &q, vars); err != nil {
			return fmt.Errorf("failed to query history of %s/%s@%s: %w", opts.Owner, opts.Repo, opts.Ref, err)
		}

		history := q.Repository.Object.Commit.History
		page := model.CommitPage{
			Commits:     make([]model.Commit, 0, len(history.Nodes)),
			HasNextPage: bool(history.PageInfo.HasNextPage),
			EndCursor:   string(history.PageInfo.EndCursor),
		}
		for _, n := range history.Nodes {
			page.Commits = append(page.Commits, toCommit(n))
		}

		if !yield(page) || !page.HasNextPage {
			return nil
		}
		vars["after"] = githubv4.NewString(history.PageInfo.EndCursor)
	}
}

func toCommit(n commitNode) model.Commit {
	c := model.Commit{
		SHA:         string(n.Oid),
		Message:     string(n.Message),
		AuthorName:  string(n.Author.Name),
		CommittedAt: n.CommittedDate.Time,
	}
	if n.Author.User != nil {
		c.AuthorLogin = string(n.Author.User.Login)
	}
	for _, pr := range n.AssociatedPullRequests.Nodes {
		// Open or closed-unmerged pull requests that contain the commit are
		// not part of the release.
		if !pr.Merged {
			continue
		}
		c.AssociatedPullRequests = append(c.AssociatedPullRequests, toPullRequest(pr))
	}
	return c
}

func toPullRequest(n pullRequestNode) model.PullRequest {
	pr := model.PullRequest{
		Number:         int(n.Number),
		Title:          string(n.Title),
		Body:           string(n.Body),
		AuthorLogin:    string(n.Author.Login),
		IsFork:         bool(n.IsCrossRepository),
		BaseRepository: string(n.BaseRepository.NameWithOwner),
		BaseRef:        string(n.BaseRefName),
		HeadRef:        string(n.HeadRefName),
	}
	if n.URL.URL != nil {
		pr.URL = n.URL.String()
	}
	if n.MergedAt != nil {
		pr.MergedAt = n.MergedAt.Time
	}
	for _, l := range n.Labels.Nodes {
		pr.Labels = append(pr.Labels, string(l.Name))
	}
	return pr
}
