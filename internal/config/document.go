package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/release-drafter/internal/labels"
	"github.com/andywolf/release-drafter/internal/notes"
	"github.com/andywolf/release-drafter/internal/release"
	"github.com/andywolf/release-drafter/internal/semver"
	"github.com/andywolf/release-drafter/internal/sorter"
)

// ReleaseConfig is the merged release-drafter document.
type ReleaseConfig struct {
	Header                    string           `mapstructure:"header" yaml:"header,omitempty"`
	Template                  string           `mapstructure:"template" yaml:"template"`
	Footer                    string           `mapstructure:"footer" yaml:"footer,omitempty"`
	NameTemplate              string           `mapstructure:"name-template" yaml:"name-template"`
	TagTemplate               string           `mapstructure:"tag-template" yaml:"tag-template"`
	VersionTemplate           string           `mapstructure:"version-template" yaml:"version-template"`
	ChangeTemplate            string           `mapstructure:"change-template" yaml:"change-template"`
	ChangeTitleEscapes        string           `mapstructure:"change-title-escapes" yaml:"change-title-escapes"`
	CommitTemplate            string           `mapstructure:"commit-template" yaml:"commit-template"`
	NoChangesTemplate         string           `mapstructure:"no-changes-template" yaml:"no-changes-template"`
	CategoryTemplate          string           `mapstructure:"category-template" yaml:"category-template"`
	Categories                []CategoryConfig `mapstructure:"categories" yaml:"categories"`
	ExcludeLabels             []string         `mapstructure:"exclude-labels" yaml:"exclude-labels"`
	IncludeLabels             []string         `mapstructure:"include-labels" yaml:"include-labels"`
	ExcludeContributors       []string         `mapstructure:"exclude-contributors" yaml:"exclude-contributors"`
	NoContributorsTemplate    string           `mapstructure:"no-contributors-template" yaml:"no-contributors-template"`
	ContributorsSeparator     string           `mapstructure:"contributors-separator" yaml:"contributors-separator"`
	ContributorsLastSeparator string           `mapstructure:"contributors-last-separator" yaml:"contributors-last-separator"`
	ContributorsSort          string           `mapstructure:"contributors-sort" yaml:"contributors-sort"`
	Replacers                 []ReplacerConfig `mapstructure:"replacers" yaml:"replacers"`
	SortBy                    string           `mapstructure:"sort-by" yaml:"sort-by"`
	SortDirection             string           `mapstructure:"sort-direction" yaml:"sort-direction"`
	VersionResolver           ResolverConfig   `mapstructure:"version-resolver" yaml:"version-resolver"`
	Prerelease                bool             `mapstructure:"prerelease" yaml:"prerelease"`
	Publish                   bool             `mapstructure:"publish" yaml:"publish"`
	ExcludePrereleases        bool             `mapstructure:"exclude-prereleases" yaml:"exclude-prereleases"`
	FilterByCommitish         bool             `mapstructure:"filter-by-commitish" yaml:"filter-by-commitish"`
	Commitish                 string           `mapstructure:"commitish" yaml:"commitish"`
	ExcludeForks              bool             `mapstructure:"exclude-forks" yaml:"exclude-forks"`
	IncludeDirectCommits      bool             `mapstructure:"include-direct-commits" yaml:"include-direct-commits"`
	References                []string         `mapstructure:"references" yaml:"references"`
}

// CategoryConfig is a category entry. Label and Labels are combined.
type CategoryConfig struct {
	Title  string   `mapstructure:"title" yaml:"title"`
	Label  string   `mapstructure:"label" yaml:"label,omitempty"`
	Labels []string `mapstructure:"labels" yaml:"labels,omitempty"`
}

// ReplacerConfig is a search/replace entry.
type ReplacerConfig struct {
	Search  string `mapstructure:"search" yaml:"search"`
	Replace string `mapstructure:"replace" yaml:"replace"`
}

// ResolverConfig configures label-driven version bumps.
type ResolverConfig struct {
	Major             BumpLabels `mapstructure:"major" yaml:"major"`
	Minor             BumpLabels `mapstructure:"minor" yaml:"minor"`
	Patch             BumpLabels `mapstructure:"patch" yaml:"patch"`
	Default           string     `mapstructure:"default" yaml:"default"`
	Base              string     `mapstructure:"base" yaml:"base,omitempty"`
	FallbackOnInvalid bool       `mapstructure:"fallback-on-invalid" yaml:"fallback-on-invalid"`
}

// BumpLabels lists the labels that trigger one kind of bump.
type BumpLabels struct {
	Labels []string `mapstructure:"labels" yaml:"labels"`
}

// Defaults returns the built-in document every layer is merged over.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"name-template":               "",
		"tag-template":                "",
		"version-template":            notes.DefaultVersionTemplate,
		"change-template":             notes.DefaultChangeTemplate,
		"change-title-escapes":        "",
		"commit-template":             notes.DefaultCommitTemplate,
		"no-changes-template":         notes.DefaultNoChangesTemplate,
		"category-template":           notes.DefaultCategoryTemplate,
		"categories":                  []interface{}{},
		"exclude-labels":              []interface{}{},
		"include-labels":              []interface{}{},
		"exclude-contributors":        []interface{}{},
		"no-contributors-template":    notes.DefaultNoContributorsTemplate,
		"contributors-separator":      notes.DefaultSeparator,
		"contributors-last-separator": notes.DefaultLastSeparator,
		"contributors-sort":           "alphabetical",
		"replacers":                   []interface{}{},
		"sort-by":                     string(sorter.ByMergedAt),
		"sort-direction":              string(sorter.Descending),
		"version-resolver": map[string]interface{}{
			"major":               map[string]interface{}{"labels": []interface{}{}},
			"minor":               map[string]interface{}{"labels": []interface{}{}},
			"patch":               map[string]interface{}{"labels": []interface{}{}},
			"default":             string(semver.BumpPatch),
			"base":                semver.DefaultBase,
			"fallback-on-invalid": false,
		},
		"prerelease":             false,
		"publish":                false,
		"exclude-prereleases":    false,
		"filter-by-commitish":    false,
		"commitish":              "",
		"exclude-forks":          false,
		"include-direct-commits": true,
		"references":             []interface{}{"master"},
	}
}

// Document is one parsed layer of configuration.
type Document struct {
	// Source names where the layer came from, e.g. "octo/app:.github/release-drafter.yml".
	Source  string
	Values  map[string]interface{}
	Extends string
}

// ParseDocument parses a YAML layer and splits off its _extends key.
func ParseDocument(source string, data []byte) (*Document, error) {
	values := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	if values == nil {
		values = map[string]interface{}{}
	}

	doc := &Document{Source: source, Values: values}
	if raw, ok := values["_extends"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s: _extends must be a string", source)
		}
		doc.Extends = strings.TrimSpace(s)
		delete(values, "_extends")
	}
	return doc, nil
}

// Merge layers documents over the defaults, later layers winning. Nested maps
// merge key by key; lists are replaced.
func Merge(layers ...*Document) (*viper.Viper, error) {
	v := viper.New()
	if err := v.MergeConfigMap(Defaults()); err != nil {
		return nil, fmt.Errorf("failed to merge defaults: %w", err)
	}
	for _, layer := range layers {
		if err := v.MergeConfigMap(layer.Values); err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", layer.Source, err)
		}
	}
	return v, nil
}

// Decode validates the merged settings against the schema and decodes them.
func Decode(v *viper.Viper) (*ReleaseConfig, error) {
	if err := ValidateSchema(v.AllSettings()); err != nil {
		return nil, err
	}

	cfg := &ReleaseConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the schema cannot express.
func (c *ReleaseConfig) Validate() error {
	if _, err := sorter.ParseBy(c.SortBy); err != nil {
		return err
	}
	if _, err := sorter.ParseDirection(c.SortDirection); err != nil {
		return err
	}
	if _, err := semver.ParseBump(c.VersionResolver.Default); err != nil {
		return fmt.Errorf("version-resolver.default: %w", err)
	}
	if c.VersionResolver.Base != "" {
		if _, err := semver.Parse(c.VersionResolver.Base); err != nil {
			return &semver.VersionParseError{Source: "base", Input: c.VersionResolver.Base, Err: err}
		}
	}
	if err := notes.ValidateReplacers(c.NotesReplacers()); err != nil {
		return err
	}
	return nil
}

// NotesCategories converts categories for the categorizer.
func (c *ReleaseConfig) NotesCategories() []labels.Category {
	out := make([]labels.Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names := append([]string{cat.Label}, cat.Labels...)
		out = append(out, labels.Category{Title: cat.Title, Labels: labels.NewSet(names...)})
	}
	return out
}

// NotesReplacers converts replacers for the renderer.
func (c *ReleaseConfig) NotesReplacers() []notes.Replacer {
	out := make([]notes.Replacer, 0, len(c.Replacers))
	for _, r := range c.Replacers {
		out = append(out, notes.Replacer{Search: r.Search, Replace: r.Replace})
	}
	return out
}

// NotesTemplates collects the template strings.
func (c *ReleaseConfig) NotesTemplates() notes.Templates {
	return notes.Templates{
		Header:         c.Header,
		Body:           c.Template,
		Footer:         c.Footer,
		Name:           c.NameTemplate,
		Tag:            c.TagTemplate,
		Version:        c.VersionTemplate,
		Change:         c.ChangeTemplate,
		Commit:         c.CommitTemplate,
		Category:       c.CategoryTemplate,
		NoChanges:      c.NoChangesTemplate,
		NoContributors: c.NoContributorsTemplate,
		TitleEscapes:   c.ChangeTitleEscapes,
	}
}

// ContributorOptions returns the contributor sentence options.
func (c *ReleaseConfig) ContributorOptions() notes.ContributorOptions {
	return notes.ContributorOptions{
		Exclude:       c.ExcludeContributors,
		Alphabetical:  c.ContributorsSort != "insertion",
		Separator:     c.ContributorsSeparator,
		LastSeparator: c.ContributorsLastSeparator,
	}
}

// ResolverRules returns the label to bump rules.
func (c *ReleaseConfig) ResolverRules() (semver.Rules, error) {
	bump, err := semver.ParseBump(c.VersionResolver.Default)
	if err != nil {
		return semver.Rules{}, fmt.Errorf("version-resolver.default: %w", err)
	}
	return semver.Rules{
		Major:   labels.NewSet(c.VersionResolver.Major.Labels...),
		Minor:   labels.NewSet(c.VersionResolver.Minor.Labels...),
		Patch:   labels.NewSet(c.VersionResolver.Patch.Labels...),
		Default: bump,
	}, nil
}

// Sorting returns the parsed sort key and direction.
func (c *ReleaseConfig) Sorting() (sorter.By, sorter.Direction, error) {
	by, err := sorter.ParseBy(c.SortBy)
	if err != nil {
		return "", "", err
	}
	dir, err := sorter.ParseDirection(c.SortDirection)
	if err != nil {
		return "", "", err
	}
	return by, dir, nil
}

// ReleaseOptions returns the last-release selection options for a run
// targeting commitish.
func (c *ReleaseConfig) ReleaseOptions(commitish string) release.Options {
	return release.Options{
		ExcludePrereleases: c.ExcludePrereleases,
		FilterByCommitish:  c.FilterByCommitish,
		Commitish:          commitish,
	}
}

// YAML renders the effective configuration.
func (c *ReleaseConfig) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
