package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/github"

	"github.com/andywolf/release-drafter/internal/release"
)

const releasesPerPage = 100

// ListReleases returns every release of owner/repo.
func (c *Client) ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error) {
	opt := &gh.ListOptions{PerPage: releasesPerPage}

	var out []release.Release
	for {
		page, resp, err := c.rest.Repositories.ListReleases(ctx, owner, repo, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to list releases of %s/%s: %w", owner, repo, err)
		}
		for _, r := range page {
			out = append(out, fromRepositoryRelease(r))
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opt.Page = resp.NextPage
	}
}

// CreateRelease creates a release from info.
func (c *Client) CreateRelease(ctx context.Context, owner, repo string, info release.Info) (*release.Release, error) {
	created, _, err := c.rest.Repositories.CreateRelease(ctx, owner, repo, toRepositoryRelease(info))
	if err != nil {
		return nil, fmt.Errorf("failed to create release %s: %w", info.TagName, err)
	}
	r := fromRepositoryRelease(created)
	return &r, nil
}

// UpdateRelease overwrites release id with info.
func (c *Client) UpdateRelease(ctx context.Context, owner, repo string, id int64, info release.Info) (*release.Release, error) {
	updated, _, err := c.rest.Repositories.EditRelease(ctx, owner, repo, id, toRepositoryRelease(info))
	if err != nil {
		return nil, fmt.Errorf("failed to update release %d: %w", id, err)
	}
	r := fromRepositoryRelease(updated)
	return &r, nil
}

func fromRepositoryRelease(r *gh.RepositoryRelease) release.Release {
	return release.Release{
		ID:              r.GetID(),
		TagName:         r.GetTagName(),
		Name:            r.GetName(),
		Body:            r.GetBody(),
		Draft:           r.GetDraft(),
		Prerelease:      r.GetPrerelease(),
		TargetCommitish: r.GetTargetCommitish(),
		CreatedAt:       r.GetCreatedAt().Time,
		PublishedAt:     r.GetPublishedAt().Time,
		HTMLURL:         r.GetHTMLURL(),
		UploadURL:       r.GetUploadURL(),
	}
}

func toRepositoryRelease(info release.Info) *gh.RepositoryRelease {
	r := &gh.RepositoryRelease{
		TagName:    gh.String(info.TagName),
		Name:       gh.String(info.Name),
		Body:       gh.String(info.Body),
		Draft:      gh.Bool(info.Draft),
		Prerelease: gh.Bool(info.Prerelease),
	}
	if info.Commitish != "" {
		r.TargetCommitish = gh.String(info.Commitish)
	}
	return r
}
