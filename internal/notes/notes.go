// Package notes renders the release note body, name and tag from the
// categorized pull requests, the direct commits and the resolved versions.
//
// Rendering is referentially transparent: the same input always produces the
// same output, which is what makes updating a draft in place meaningful.
package notes

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/andywolf/release-drafter/internal/labels"
	"github.com/andywolf/release-drafter/internal/model"
	"github.com/andywolf/release-drafter/internal/semver"
	"github.com/andywolf/release-drafter/internal/template"
)

// Default templates.
const (
	DefaultChangeTemplate         = "* $TITLE (#$NUMBER) @$AUTHOR"
	DefaultCommitTemplate         = "* $MESSAGE ($SHORT_SHA) @$AUTHOR"
	DefaultCategoryTemplate       = "## $TITLE"
	DefaultNoChangesTemplate      = "* No changes"
	DefaultNoContributorsTemplate = "No contributors"
	DefaultVersionTemplate        = "$MAJOR.$MINOR.$PATCH"
	DefaultSeparator              = ", "
	DefaultLastSeparator          = " and "
)

// Templates holds the configured template strings.
type Templates struct {
	Header         string
	Body           string
	Footer         string
	Name           string
	Tag            string
	Version        string
	Change         string
	Commit         string
	Category       string
	NoChanges      string
	NoContributors string
	// TitleEscapes lists characters escaped in pull request titles.
	TitleEscapes string
}

// ContributorOptions controls the $CONTRIBUTORS sentence.
type ContributorOptions struct {
	// Exclude lists logins (without '@') or git author names to omit.
	Exclude []string
	// Alphabetical sorts contributors; otherwise first-seen order is kept.
	Alphabetical  bool
	Separator     string
	LastSeparator string
}

// Input is everything needed to render a release note.
type Input struct {
	Templates    Templates
	Contributors ContributorOptions
	Replacers    []Replacer

	// PullRequests is the accepted, sorted pull request set.
	PullRequests []model.PullRequest
	// Categorized is PullRequests placed into sections.
	Categorized labels.Categorized
	// DirectCommits are commits without a pull request. They always count as
	// contributions and are listed in the flat block when IncludeDirectCommits
	// is set.
	DirectCommits        []model.Commit
	IncludeDirectCommits bool

	Versions    *semver.Versions
	PreviousTag string
}

// Output is the rendered release note.
type Output struct {
	Body string
	Name string
	Tag  string
	// Placeholders is the table the body, name and tag were rendered with.
	Placeholders template.Placeholders
}

// Build renders the body, name and tag.
func Build(in Input) (Output, error) {
	replacers, err := compileReplacers(in.Replacers)
	if err != nil {
		return Output{}, err
	}

	t := withDefaults(in.Templates)
	escaper := newTitleEscaper(t.TitleEscapes)

	values := template.Merge(
		VersionPlaceholders(in.Versions, t.Version),
		template.Placeholders{
			"PREVIOUS_TAG": in.PreviousTag,
			"CHANGES":      changes(in, t, escaper),
			"CONTRIBUTORS": Contributors(in.PullRequests, in.DirectCommits, in.Contributors, t.NoContributors),
		},
	)

	body := template.Render(t.Header+t.Body+t.Footer, values)
	for _, replace := range replacers {
		body = replace(body)
	}

	return Output{
		Body:         body,
		Name:         template.Render(t.Name, values),
		Tag:          template.Render(t.Tag, values),
		Placeholders: values,
	}, nil
}

func withDefaults(t Templates) Templates {
	if t.Change == "" {
		t.Change = DefaultChangeTemplate
	}
	if t.Commit == "" {
		t.Commit = DefaultCommitTemplate
	}
	if t.Category == "" {
		t.Category = DefaultCategoryTemplate
	}
	if t.NoChanges == "" {
		t.NoChanges = DefaultNoChangesTemplate
	}
	if t.NoContributors == "" {
		t.NoContributors = DefaultNoContributorsTemplate
	}
	if t.Version == "" {
		t.Version = DefaultVersionTemplate
	}
	return t
}

// changes renders $CHANGES: the flat list of uncategorized pull requests and
// direct commits, followed by every non-empty category section.
func changes(in Input, t Templates, escaper *titleEscaper) string {
	if in.Categorized.Empty() && (!in.IncludeDirectCommits || len(in.DirectCommits) == 0) {
		return t.NoChanges
	}

	var blocks []string
	var flat []string
	for _, pr := range in.Categorized.Uncategorized {
		flat = append(flat, changeEntry(pr, t.Change, escaper))
	}
	if in.IncludeDirectCommits {
		for _, c := range in.DirectCommits {
			flat = append(flat, commitEntry(c, t.Commit))
		}
	}
	if len(flat) > 0 {
		blocks = append(blocks, strings.Join(flat, "\n"))
	}

	for _, section := range in.Categorized.Sections {
		if len(section.PullRequests) == 0 {
			continue
		}
		entries := make([]string, 0, len(section.PullRequests))
		for _, pr := range section.PullRequests {
			entries = append(entries, changeEntry(pr, t.Change, escaper))
		}
		header := template.Render(t.Category, template.Placeholders{"TITLE": section.Title})
		blocks = append(blocks, header+"\n\n"+strings.Join(entries, "\n"))
	}

	return strings.TrimSpace(strings.Join(blocks, "\n\n"))
}

func changeEntry(pr model.PullRequest, tmpl string, escaper *titleEscaper) string {
	author := pr.AuthorLogin
	if author == "" {
		author = "ghost"
	}
	return template.Render(tmpl, template.Placeholders{
		"TITLE":    escaper.escape(pr.Title),
		"NUMBER":   strconv.Itoa(pr.Number),
		"AUTHOR":   author,
		"BODY":     pr.Body,
		"URL":      pr.URL,
		"BASE_REF": pr.BaseRef,
		"HEAD_REF": pr.HeadRef,
	})
}

func commitEntry(c model.Commit, tmpl string) string {
	author := c.AuthorLogin
	if author == "" {
		author = c.AuthorName
	}
	return template.Render(tmpl, template.Placeholders{
		"MESSAGE":   c.Subject(),
		"SHA":       c.SHA,
		"SHORT_SHA": c.ShortSHA(),
		"AUTHOR":    author,
	})
}

// Contributors renders the contributor sentence: pull request authors
// followed by direct commit authors, deduplicated.
func Contributors(prs []model.PullRequest, direct []model.Commit, opts ContributorOptions, none string) string {
	exclude := labels.NewSet(opts.Exclude...)

	var names []string
	seen := make(map[string]bool)
	add := func(login, name string) {
		if login != "" {
			if exclude.Has(login) {
				return
			}
			name = "@" + login
		} else if name == "" || exclude.Has(name) {
			return
		}
		if seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, pr := range prs {
		if pr.AuthorLogin != "" {
			add(pr.AuthorLogin, "")
		}
	}
	for _, c := range direct {
		add(c.AuthorLogin, c.AuthorName)
	}

	if len(names) == 0 {
		return none
	}
	if opts.Alphabetical {
		sort.Strings(names)
	}

	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	last := opts.LastSeparator
	if last == "" {
		last = DefaultLastSeparator
	}

	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], sep) + last + names[len(names)-1]
}

// VersionPlaceholders returns the version placeholders for v. Each version is
// available as $X_VERSION (formatted with versionTemplate),
// $X_VERSION_MAJOR_MINOR and $X_VERSION_MAJOR.
func VersionPlaceholders(v *semver.Versions, versionTemplate string) template.Placeholders {
	if v == nil {
		return nil
	}
	if versionTemplate == "" {
		versionTemplate = DefaultVersionTemplate
	}

	out := template.Placeholders{}
	add := func(prefix string, ver semver.Version) {
		out[prefix+"_VERSION"] = FormatVersion(ver, versionTemplate)
		out[prefix+"_VERSION_MAJOR_MINOR"] = ver.MajorMinor()
		out[prefix+"_VERSION_MAJOR"] = ver.MajorOnly()
	}

	add("PREVIOUS", v.Previous)
	add("NEXT_MAJOR", v.NextMajor)
	add("NEXT_MINOR", v.NextMinor)
	add("NEXT_PATCH", v.NextPatch)
	add("RESOLVED", v.Resolved)
	if v.Input != nil {
		add("INPUT", *v.Input)
	}
	return out
}

// FormatVersion renders a version template with $MAJOR, $MINOR and $PATCH.
func FormatVersion(v semver.Version, versionTemplate string) string {
	return template.Render(versionTemplate, template.Placeholders{
		"MAJOR": strconv.Itoa(v.Major),
		"MINOR": strconv.Itoa(v.Minor),
		"PATCH": strconv.Itoa(v.Patch),
	})
}

// titleEscaper escapes configured characters in pull request titles.
// Inline code spans are left untouched unless backticks are escaped; '@' and '#' are neutralized with an
// empty HTML comment so they do not create mentions or references.
type titleEscaper struct {
	pattern *regexp.Regexp
}

func newTitleEscaper(escapes string) *titleEscaper {
	if escapes == "" {
		return &titleEscaper{}
	}
	var alternatives []string
	for _, r := range escapes {
		alternatives = append(alternatives, regexp.QuoteMeta(string(r)))
	}
	// An escaped backtick must win over the code span alternative.
	if strings.ContainsRune(escapes, '`') {
		alternatives = append(alternatives, "`[^`]*`")
	} else {
		alternatives = append([]string{"`[^`]*`"}, alternatives...)
	}
	return &titleEscaper{pattern: regexp.MustCompile(strings.Join(alternatives, "|"))}
}

func (e *titleEscaper) escape(title string) string {
	if e.pattern == nil {
		return title
	}
	return e.pattern.ReplaceAllStringFunc(title, func(m string) string {
		if len(m) > 1 && strings.HasPrefix(m, "`") {
			return m
		}
		if m == "@" || m == "#" {
			return m + "<!---->"
		}
		return `\` + m
	})
}
