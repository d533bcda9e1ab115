package drafter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andywolf/release-drafter/internal/config"
	"github.com/andywolf/release-drafter/internal/github"
	"github.com/andywolf/release-drafter/internal/model"
	"github.com/andywolf/release-drafter/internal/release"
	"github.com/andywolf/release-drafter/internal/semver"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

const baseConfig = `
name-template: 'v$RESOLVED_VERSION'
tag-template: 'v$RESOLVED_VERSION'
template: |
  ## Changes

  $CHANGES

  Thanks to $CONTRIBUTORS
categories:
  - title: Features
    label: feature
  - title: Bug Fixes
    labels: [bug]
version-resolver:
  minor:
    labels: [feature]
`

type fakeGitHub struct {
	releases   []release.Release
	listErr    error
	pages      []model.CommitPage
	historyErr error

	history  []github.HistoryOptions
	yielded  int
	created  []release.Info
	updated  map[int64]release.Info
	writeErr error
}

func (f *fakeGitHub) ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error) {
	return f.releases, f.listErr
}

func (f *fakeGitHub) CommitHistory(ctx context.Context, opts github.HistoryOptions, yield func(model.CommitPage) bool) error {
	f.history = append(f.history, opts)
	if f.historyErr != nil {
		return f.historyErr
	}
	for _, page := range f.pages {
		f.yielded++
		if !yield(page) || !page.HasNextPage {
			return nil
		}
	}
	return nil
}

func (f *fakeGitHub) CreateRelease(ctx context.Context, owner, repo string, info release.Info) (*release.Release, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.created = append(f.created, info)
	return &release.Release{ID: 99, TagName: info.TagName, Name: info.Name, Body: info.Body, HTMLURL: "https://github.com/octo/app/releases/99"}, nil
}

func (f *fakeGitHub) UpdateRelease(ctx context.Context, owner, repo string, id int64, info release.Info) (*release.Release, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	if f.updated == nil {
		f.updated = map[int64]release.Info{}
	}
	f.updated[id] = info
	return &release.Release{ID: id, TagName: info.TagName, Name: info.Name, Body: info.Body}, nil
}

type fakeLoader struct {
	loaded *config.Loaded
	err    error
	name   string
}

func (f *fakeLoader) Load(ctx context.Context, owner, repo, name string) (*config.Loaded, error) {
	f.name = name
	return f.loaded, f.err
}

func loadConfig(t *testing.T, yaml string) *fakeLoader {
	t.Helper()
	doc, err := config.ParseDocument("octo/app:.github/release-drafter.yml", []byte(yaml))
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	v, err := config.Merge(doc)
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	cfg, err := config.Decode(v)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return &fakeLoader{loaded: &config.Loaded{Config: cfg, Sources: []string{doc.Source}}}
}

func pr(number int, title, author string, merged time.Time, labels ...string) model.PullRequest {
	return model.PullRequest{
		Number:         number,
		Title:          title,
		AuthorLogin:    author,
		MergedAt:       merged,
		Labels:         labels,
		BaseRepository: "octo/app",
		BaseRef:        "main",
	}
}

func history() []model.CommitPage {
	pr3 := pr(3, "Sync upstream", "dave", t0.Add(40*time.Hour))
	pr3.BaseRepository = "someone/else"

	return []model.CommitPage{
		{
			Commits: []model.Commit{
				{
					SHA:                    "aaaaaaa1111",
					Message:                "Merge pull request #1 from alice/widget\n\nAdd widget",
					AuthorLogin:            "alice",
					CommittedAt:            t0.Add(72 * time.Hour),
					AssociatedPullRequests: []model.PullRequest{pr(1, "Add widget", "alice", t0.Add(72*time.Hour), "feature")},
				},
				{
					SHA:                    "bbbbbbb2222",
					Message:                "Fix crash (#2)",
					AuthorLogin:            "bob",
					CommittedAt:            t0.Add(48 * time.Hour),
					AssociatedPullRequests: []model.PullRequest{pr(2, "Fix crash", "bob", t0.Add(48*time.Hour), "bug")},
				},
				{
					SHA:                    "eeeeeee5555",
					Message:                "Sync upstream (#3)",
					AuthorLogin:            "dave",
					CommittedAt:            t0.Add(40 * time.Hour),
					AssociatedPullRequests: []model.PullRequest{pr3},
				},
			},
			HasNextPage: true,
			EndCursor:   "c1",
		},
		{
			Commits: []model.Commit{
				{
					SHA:         "ccccccc3333",
					Message:     "Tidy docs",
					AuthorLogin: "carol",
					CommittedAt: t0.Add(24 * time.Hour),
				},
				{
					SHA:                    "ddddddd4444",
					Message:                "Prepare v1.0.0 (#9)",
					AuthorLogin:            "erin",
					CommittedAt:            t0,
					AssociatedPullRequests: []model.PullRequest{pr(9, "Prepare v1.0.0", "erin", t0, "feature")},
				},
			},
			HasNextPage: true,
			EndCursor:   "c2",
		},
		{
			Commits:     []model.Commit{{SHA: "fffffff6666", Message: "Initial commit", CommittedAt: t0.Add(-time.Hour)}},
			HasNextPage: false,
		},
	}
}

func lastRelease() release.Release {
	return release.Release{ID: 1, TagName: "v1.0.0", Name: "v1.0.0", CreatedAt: t0, PublishedAt: t0}
}

func TestRun_CreatesDraft(t *testing.T) {
	gh := &fakeGitHub{releases: []release.Release{lastRelease()}, pages: history()}
	loader := loadConfig(t, baseConfig)

	result, err := New(gh, loader, nil).Run(context.Background(), Request{
		Owner:      "octo",
		Repo:       "app",
		Ref:        "refs/heads/main",
		ConfigName: "release-drafter.yml",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if loader.name != "release-drafter.yml" {
		t.Errorf("config name = %q", loader.name)
	}
	if len(gh.history) != 1 || !gh.history[0].Since.Equal(t0) || gh.history[0].Ref != "refs/heads/main" {
		t.Errorf("history options = %+v", gh.history)
	}
	if gh.yielded != 2 {
		t.Errorf("fetched %d pages, want 2", gh.yielded)
	}

	if result.Commits != 4 || len(result.Direct) != 1 {
		t.Errorf("commits = %d, direct = %d", result.Commits, len(result.Direct))
	}
	var numbers []int
	for _, p := range result.PullRequests {
		numbers = append(numbers, p.Number)
	}
	if len(numbers) != 2 || numbers[0] != 1 || numbers[1] != 2 {
		t.Errorf("pull requests = %v, want [1 2]", numbers)
	}

	if result.Versions.Resolved.String() != "1.1.0" || result.Versions.Source != semver.SourceLabels {
		t.Errorf("resolved = %s from %s", result.Versions.Resolved, result.Versions.Source)
	}

	wantBody := "## Changes\n\n" +
		"* Tidy docs (ccccccc) @carol\n\n" +
		"## Features\n\n* Add widget (#1) @alice\n\n" +
		"## Bug Fixes\n\n* Fix crash (#2) @bob\n\n" +
		"Thanks to @alice, @bob and @carol\n"
	if len(gh.created) != 1 {
		t.Fatalf("created %d releases, want 1", len(gh.created))
	}
	got := gh.created[0]
	if got.Body != wantBody {
		t.Errorf("body = %q\nwant   %q", got.Body, wantBody)
	}
	want := release.Info{TagName: "v1.1.0", Name: "v1.1.0", Body: wantBody, Draft: true, Commitish: "main"}
	if got != want {
		t.Errorf("created = %+v\nwant      %+v", got, want)
	}
	if result.Release == nil || result.Release.ID != 99 {
		t.Errorf("Release = %+v", result.Release)
	}
	if result.Action.Kind != release.Create {
		t.Errorf("action = %s", result.Action.Kind)
	}
}

func TestRun_UpdatesDraftWithOverrides(t *testing.T) {
	draft := release.Release{ID: 7, TagName: "v1.0.1", Name: "v1.0.1", Draft: true, TargetCommitish: "release-branch", CreatedAt: t0.Add(time.Hour)}
	gh := &fakeGitHub{releases: []release.Release{lastRelease(), draft}, pages: history()}

	yes := true
	result, err := New(gh, loadConfig(t, baseConfig), nil).Run(context.Background(), Request{
		Owner: "octo",
		Repo:  "app",
		Ref:   "refs/heads/main",
		Inputs: Inputs{
			Tag:        "v2.0.0-rc.1",
			Prerelease: &yes,
			Publish:    &yes,
		},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Versions.Source != semver.SourceTagOverride || result.Versions.Resolved.String() != "2.0.0-rc.1" {
		t.Errorf("resolved = %s from %s", result.Versions.Resolved, result.Versions.Source)
	}
	if len(gh.created) != 0 {
		t.Errorf("created %d releases, want 0", len(gh.created))
	}
	got, ok := gh.updated[7]
	if !ok {
		t.Fatalf("draft 7 not updated: %+v", gh.updated)
	}
	if got.TagName != "v2.0.0-rc.1" || got.Name != "v2.0.0" || got.Draft || !got.Prerelease {
		t.Errorf("updated = %+v", got)
	}
	if got.Commitish != "release-branch" {
		t.Errorf("Commitish = %q, want the draft's release-branch", got.Commitish)
	}
}

func TestRun_DryRun(t *testing.T) {
	gh := &fakeGitHub{releases: []release.Release{lastRelease()}, pages: history()}

	result, err := New(gh, loadConfig(t, baseConfig), nil).Run(context.Background(), Request{
		Owner:  "octo",
		Repo:   "app",
		Ref:    "refs/heads/main",
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(gh.created) != 0 || len(gh.updated) != 0 {
		t.Error("dry run wrote a release")
	}
	if result.Release != nil {
		t.Errorf("Release = %+v, want nil", result.Release)
	}
	if result.Action.Info.TagName != "v1.1.0" {
		t.Errorf("planned tag = %q", result.Action.Info.TagName)
	}
}

func TestRun_NoPreviousRelease(t *testing.T) {
	gh := &fakeGitHub{pages: history()}

	result, err := New(gh, loadConfig(t, baseConfig), nil).Run(context.Background(), Request{
		Owner:  "octo",
		Repo:   "app",
		Ref:    "refs/heads/main",
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !gh.history[0].Since.IsZero() {
		t.Errorf("since = %v, want zero", gh.history[0].Since)
	}
	if gh.yielded != 3 {
		t.Errorf("fetched %d pages, want 3", gh.yielded)
	}
	if len(result.PullRequests) != 3 {
		t.Errorf("got %d pull requests, want 3", len(result.PullRequests))
	}
	if result.Versions.Previous.String() != "0.0.0" || result.Versions.Resolved.String() != "0.1.0" {
		t.Errorf("previous = %s, resolved = %s", result.Versions.Previous, result.Versions.Resolved)
	}
	if !strings.Contains(result.Notes.Body, "Prepare v1.0.0 (#9)") {
		t.Errorf("body misses #9:\n%s", result.Notes.Body)
	}
}

func TestRun_Filters(t *testing.T) {
	pages := history()
	pages[0].Commits[0].AssociatedPullRequests[0].IsFork = true

	gh := &fakeGitHub{releases: []release.Release{lastRelease()}, pages: pages}
	loader := loadConfig(t, baseConfig+`
exclude-forks: true
exclude-labels: [bug]
include-direct-commits: true
exclude-contributors: [carol]
`)

	result, err := New(gh, loader, nil).Run(context.Background(), Request{Owner: "octo", Repo: "app", Ref: "main", DryRun: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.PullRequests) != 0 {
		t.Errorf("pull requests = %+v, want none", result.PullRequests)
	}

	body := result.Notes.Body
	if !strings.Contains(body, "* Tidy docs (ccccccc) @carol") {
		t.Errorf("body misses the direct commit:\n%s", body)
	}
	if !strings.Contains(body, "Thanks to No contributors") {
		t.Errorf("body should have no contributors:\n%s", body)
	}
	if result.Versions.Resolved.String() != "1.0.1" {
		t.Errorf("resolved = %s, want 1.0.1", result.Versions.Resolved)
	}
}

func TestRun_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		gh      *fakeGitHub
		loader  func(t *testing.T) *fakeLoader
		req     Request
		wantErr string
	}{
		{
			name:    "config load failure",
			gh:      &fakeGitHub{},
			loader:  func(t *testing.T) *fakeLoader { return &fakeLoader{err: boom} },
			wantErr: "failed to load config: boom",
		},
		{
			name:    "release list failure",
			gh:      &fakeGitHub{listErr: boom},
			wantErr: "failed to list releases: boom",
		},
		{
			name:    "history failure",
			gh:      &fakeGitHub{historyErr: boom},
			wantErr: "failed to read commit history: boom",
		},
		{
			name:    "no target",
			gh:      &fakeGitHub{},
			req:     Request{Owner: "octo", Repo: "app"},
			wantErr: "no target commitish",
		},
		{
			name:    "write failure",
			gh:      &fakeGitHub{pages: history(), writeErr: boom},
			wantErr: "failed to create release: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := loadConfig(t, baseConfig)
			if tt.loader != nil {
				loader = tt.loader(t)
			}
			req := tt.req
			if req.Owner == "" {
				req = Request{Owner: "octo", Repo: "app", Ref: "main"}
			}
			_, err := New(tt.gh, loader, nil).Run(context.Background(), req)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Run() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRun_InvalidVersionOverride(t *testing.T) {
	gh := &fakeGitHub{releases: []release.Release{lastRelease()}, pages: history()}

	_, err := New(gh, loadConfig(t, baseConfig), nil).Run(context.Background(), Request{
		Owner:  "octo",
		Repo:   "app",
		Ref:    "main",
		Inputs: Inputs{Tag: "nightly"},
	})
	var parseErr *semver.VersionParseError
	if !errors.As(err, &parseErr) || parseErr.Source != "tag" {
		t.Fatalf("Run() error = %v, want tag VersionParseError", err)
	}
	if len(gh.created) != 0 {
		t.Error("release created despite the invalid override")
	}
}

func TestRun_EnforceReferences(t *testing.T) {
	tests := []struct {
		name        string
		ref         string
		wantSkipped bool
	}{
		{"matching branch", "refs/heads/master", false},
		{"other branch", "refs/heads/feature/x", true},
		{"release branch pattern", "refs/heads/release/1.x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := &fakeGitHub{releases: []release.Release{lastRelease()}, pages: history()}
			loader := loadConfig(t, baseConfig+"references: [master, 'release/.*']\n")

			result, err := New(gh, loader, nil).Run(context.Background(), Request{
				Owner:             "octo",
				Repo:              "app",
				Ref:               tt.ref,
				DryRun:            true,
				EnforceReferences: true,
			})
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if result.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %v, want %v", result.Skipped, tt.wantSkipped)
			}
			if tt.wantSkipped && len(gh.history) != 0 {
				t.Error("history read for a skipped ref")
			}
		})
	}
}
