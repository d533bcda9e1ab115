package config

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound is returned by a FileFetcher when the file does not exist.
var ErrNotFound = errors.New("file not found")

// ErrConfigNotFound is returned when neither the repository nor the owner's
// .github repository holds the config document.
var ErrConfigNotFound = errors.New("config not found")

// maxExtendsDepth bounds _extends chains.
const maxExtendsDepth = 5

// FileFetcher reads a file from a repository's default branch.
type FileFetcher interface {
	GetFile(ctx context.Context, owner, repo, path string) ([]byte, error)
}

// extendsPattern matches "repo", "owner/repo" and "owner/repo:path".
var extendsPattern = regexp.MustCompile(`^(?:([A-Za-z\d][A-Za-z\d-]{0,38})/)?([-.\w]+)(?::(.+))?$`)

// Location identifies a config file in a repository.
type Location struct {
	Owner string
	Repo  string
	Path  string
}

func (l Location) String() string {
	return l.Owner + "/" + l.Repo + ":" + l.Path
}

// ParseExtends resolves an _extends value relative to the extending file.
func ParseExtends(value string, from Location) (Location, error) {
	m := extendsPattern.FindStringSubmatch(value)
	if m == nil {
		return Location{}, fmt.Errorf("invalid _extends value %q", value)
	}
	loc := Location{Owner: from.Owner, Repo: m[2], Path: from.Path}
	if m[1] != "" {
		loc.Owner = m[1]
	}
	if m[3] != "" {
		loc.Path = m[3]
	}
	return loc, nil
}

// Loaded is the outcome of Loader.Load.
type Loaded struct {
	Config *ReleaseConfig
	// Sources lists the layers merged over the defaults, base first.
	Sources []string
}

// Loader fetches and layers release-drafter documents.
type Loader struct {
	fetcher FileFetcher
}

// NewLoader creates a loader reading files through f.
func NewLoader(f FileFetcher) *Loader {
	return &Loader{fetcher: f}
}

// Load reads .github/<name> from owner/repo, falling back to the owner's
// .github repository, follows _extends and returns the validated result.
// A name without a .yml or .yaml extension gets .yml appended.
func (l *Loader) Load(ctx context.Context, owner, repo, name string) (*Loaded, error) {
	name = ConfigFileName(name)
	loc := Location{Owner: owner, Repo: repo, Path: ".github/" + name}

	doc, err := l.fetch(ctx, loc)
	if errors.Is(err, ErrNotFound) && repo != ".github" {
		loc.Repo = ".github"
		doc, err = l.fetch(ctx, loc)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: .github/%s in %s/%s", ErrConfigNotFound, name, owner, repo)
	}
	if err != nil {
		return nil, err
	}

	layers := []*Document{doc}
	seen := map[Location]bool{loc: true}
	for doc.Extends != "" {
		if len(layers) > maxExtendsDepth {
			return nil, fmt.Errorf("_extends chain from %s is deeper than %d", layers[0].Source, maxExtendsDepth)
		}
		next, err := ParseExtends(doc.Extends, loc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Source, err)
		}
		if seen[next] {
			return nil, fmt.Errorf("%s: _extends cycle at %s", doc.Source, next)
		}
		seen[next] = true

		base, err := l.fetch(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("failed to load _extends %s: %w", next, err)
		}
		layers = append(layers, base)
		doc, loc = base, next
	}

	// Base layers first so the extending document wins.
	ordered := make([]*Document, 0, len(layers))
	sources := make([]string, 0, len(layers))
	for i := len(layers) - 1; i >= 0; i-- {
		ordered = append(ordered, layers[i])
		sources = append(sources, layers[i].Source)
	}

	v, err := Merge(ordered...)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Sources: sources}, nil
}

// ConfigFileName returns name with a .yml extension unless it already ends
// in .yml or .yaml.
func ConfigFileName(name string) string {
	if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
		return name
	}
	return name + ".yml"
}

func (l *Loader) fetch(ctx context.Context, loc Location) (*Document, error) {
	data, err := l.fetcher.GetFile(ctx, loc.Owner, loc.Repo, loc.Path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(loc.String(), data)
}
