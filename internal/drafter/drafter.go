// Package drafter runs one release-drafter pass: load the configuration,
// read the history since the last release, render the note and create or
// update the draft release.
package drafter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andywolf/release-drafter/internal/associate"
	"github.com/andywolf/release-drafter/internal/config"
	"github.com/andywolf/release-drafter/internal/github"
	"github.com/andywolf/release-drafter/internal/labels"
	"github.com/andywolf/release-drafter/internal/logging"
	"github.com/andywolf/release-drafter/internal/model"
	"github.com/andywolf/release-drafter/internal/notes"
	"github.com/andywolf/release-drafter/internal/release"
	"github.com/andywolf/release-drafter/internal/semver"
	"github.com/andywolf/release-drafter/internal/sorter"
	"github.com/andywolf/release-drafter/internal/trigger"
)

// GitHub is the hosting platform API the drafter needs.
type GitHub interface {
	ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error)
	CommitHistory(ctx context.Context, opts github.HistoryOptions, yield func(model.CommitPage) bool) error
	CreateRelease(ctx context.Context, owner, repo string, info release.Info) (*release.Release, error)
	UpdateRelease(ctx context.Context, owner, repo string, id int64, info release.Info) (*release.Release, error)
}

// ConfigLoader loads the layered release-drafter document.
type ConfigLoader interface {
	Load(ctx context.Context, owner, repo, name string) (*config.Loaded, error)
}

// Inputs are the per-run overrides.
type Inputs struct {
	Version    string
	Tag        string
	Name       string
	Commitish  string
	Prerelease *bool
	Publish    *bool
}

// Request describes one run.
type Request struct {
	Owner      string
	Repo       string
	Ref        string
	ConfigName string
	Inputs     Inputs
	// DryRun renders the release without creating or updating it.
	DryRun bool
	// EnforceReferences skips the run when Ref matches none of the
	// configured references.
	EnforceReferences bool
}

// Result is the outcome of a run.
type Result struct {
	// Skipped is set when the ref is not one of the configured references.
	Skipped bool

	Config      *config.ReleaseConfig
	LastRelease *release.Release
	Draft       *release.Release

	Commits      int
	PullRequests []model.PullRequest
	Direct       []model.Commit

	Versions *semver.Versions
	Notes    notes.Output
	Action   release.Action

	// Release is the created or updated release; nil on a dry run.
	Release *release.Release
}

// Drafter runs the pipeline against its collaborators.
type Drafter struct {
	github GitHub
	loader ConfigLoader
	logger logging.Logger
	now    func() time.Time
}

// New creates a Drafter. A nil logger discards output.
func New(gh GitHub, loader ConfigLoader, logger logging.Logger) *Drafter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Drafter{github: gh, loader: loader, logger: logger, now: time.Now}
}

// Run executes one pass.
func (d *Drafter) Run(ctx context.Context, req Request) (*Result, error) {
	start := d.now()
	repository := req.Owner + "/" + req.Repo

	var (
		loaded   *config.Loaded
		releases []release.Release
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loaded, err = d.loader.Load(gctx, req.Owner, req.Repo, req.ConfigName)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		releases, err = d.github.ListReleases(gctx, req.Owner, req.Repo)
		if err != nil {
			return fmt.Errorf("failed to list releases: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cfg := loaded.Config
	d.logger.Debugf("Config loaded from %s", strings.Join(loaded.Sources, ", "))

	if req.EnforceReferences {
		ok, err := trigger.IsTriggerable(req.Ref, cfg.References)
		if err != nil {
			return nil, err
		}
		if !ok {
			d.logger.Infof("Ref %s does not match any of the references %v, skipping", req.Ref, cfg.References)
			return &Result{Skipped: true, Config: cfg}, nil
		}
	}

	target := first(req.Inputs.Commitish, cfg.Commitish, req.Ref)
	if target == "" {
		return nil, fmt.Errorf("no target commitish: set the commitish input or config, or run on a ref")
	}

	last, draft := release.FindReleases(releases, cfg.ReleaseOptions(target))
	result := &Result{Config: cfg, LastRelease: last, Draft: draft}

	var since time.Time
	if last != nil {
		since = last.CreatedAt
		d.logger.Infof("Last release: %s (%s)", last.TagName, last.CreatedAt.Format(time.RFC3339))
	} else {
		d.logger.Infof("No previous release found, reading the full history of %s", target)
	}
	if draft != nil {
		d.logger.Infof("Updating existing draft release %d (%s)", draft.ID, draft.TagName)
	}

	assembler := associate.NewAssembler(since)
	err := d.github.CommitHistory(ctx, github.HistoryOptions{
		Owner: req.Owner,
		Repo:  req.Repo,
		Ref:   target,
		Since: since,
	}, assembler.Add)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit history: %w", err)
	}

	associated := associate.Associate(assembler.Commits())
	result.Commits = len(associated.Commits)
	result.Direct = associated.Direct

	prs := associate.FilterPullRequests(associated.PullRequests, func(pr model.PullRequest) bool {
		if pr.BaseRepository != "" && !strings.EqualFold(pr.BaseRepository, repository) {
			return false
		}
		return !(cfg.ExcludeForks && pr.IsFork)
	})
	prs = labels.Filter(prs, labels.NewSet(cfg.ExcludeLabels...), labels.NewSet(cfg.IncludeLabels...))

	by, dir, err := cfg.Sorting()
	if err != nil {
		return nil, err
	}
	prs = sorter.Sort(prs, by, dir)
	result.PullRequests = prs
	d.logger.Infof("Found %d commits, %d pull requests and %d direct commits",
		result.Commits, len(prs), len(associated.Direct))

	rules, err := cfg.ResolverRules()
	if err != nil {
		return nil, err
	}
	in := semver.Input{
		Base:              cfg.VersionResolver.Base,
		PullRequests:      prs,
		Rules:             rules,
		VersionOverride:   req.Inputs.Version,
		TagOverride:       req.Inputs.Tag,
		NameOverride:      req.Inputs.Name,
		FallbackOnInvalid: cfg.VersionResolver.FallbackOnInvalid,
	}
	previousTag := ""
	if last != nil {
		in.HasPrevious = true
		in.PreviousTag = last.TagName
		in.PreviousName = last.Name
		previousTag = last.TagName
	}
	versions, err := semver.Resolve(in)
	if err != nil {
		return nil, err
	}
	result.Versions = versions
	d.logger.Infof("Resolved version %s (%s bump, from %s)", versions.Resolved, versions.Bump, versions.Source)

	out, err := notes.Build(notes.Input{
		Templates:            cfg.NotesTemplates(),
		Contributors:         cfg.ContributorOptions(),
		Replacers:            cfg.NotesReplacers(),
		PullRequests:         prs,
		Categorized:          labels.Categorize(prs, cfg.NotesCategories()),
		DirectCommits:        associated.Direct,
		IncludeDirectCommits: cfg.IncludeDirectCommits,
		Versions:             versions,
		PreviousTag:          previousTag,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render release notes: %w", err)
	}
	result.Notes = out

	action := release.Plan(draft,
		release.Info{TagName: out.Tag, Name: out.Name, Body: out.Body},
		release.Overrides{
			Tag:        req.Inputs.Tag,
			Name:       req.Inputs.Name,
			Commitish:  req.Inputs.Commitish,
			Prerelease: req.Inputs.Prerelease,
			Publish:    req.Inputs.Publish,
		},
		release.Defaults{
			Prerelease: cfg.Prerelease,
			Publish:    cfg.Publish,
			Commitish:  cfg.Commitish,
			Ref:        trigger.ShortRef(req.Ref),
		},
	)
	result.Action = action

	if req.DryRun {
		d.logger.Infof("Dry run: would %s release %q (tag %q)", action.Kind, action.Info.Name, action.Info.TagName)
		return result, nil
	}

	switch action.Kind {
	case release.Update:
		result.Release, err = d.github.UpdateRelease(ctx, req.Owner, req.Repo, action.ReleaseID, action.Info)
	default:
		result.Release, err = d.github.CreateRelease(ctx, req.Owner, req.Repo, action.Info)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s release: %w", action.Kind, err)
	}

	d.logger.Infof("Release %q %sd in %s: %s", result.Release.Name, action.Kind,
		d.now().Sub(start).Round(time.Millisecond), result.Release.HTMLURL)
	return result, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
