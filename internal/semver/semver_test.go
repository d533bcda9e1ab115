package semver

import (
	"errors"
	"testing"

	"github.com/andywolf/release-drafter/internal/labels"
	"github.com/andywolf/release-drafter/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "v2.0.0", want: "2.0.0"},
		{input: "2.1", want: "2.1.0"},
		{input: "v3", want: "3.0.0"},
		{input: "v2.1.1-alpha", want: "2.1.1-alpha"},
		{input: "v2.1.1-foxtrot-unicorn-alpha", want: "2.1.1-foxtrot-unicorn-alpha"},
		{input: "v2.1.1-alpha (Code name: Foxtrot Unicorn)", want: "2.1.1-alpha"},
		{input: "Release v1.0.2 🌈", want: "1.0.2"},
		{input: "Foxtrot Unicorn", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestVersionForms(t *testing.T) {
	v := MustParse("3.2.1")
	if v.Full() != "3.2.1" || v.MajorMinor() != "3.2" || v.MajorOnly() != "3" {
		t.Errorf("forms = %s, %s, %s", v.Full(), v.MajorMinor(), v.MajorOnly())
	}
}

func TestInc(t *testing.T) {
	tests := []struct {
		from string
		bump Bump
		want string
	}{
		{"2.0.0", BumpMajor, "3.0.0"},
		{"2.0.0", BumpMinor, "2.1.0"},
		{"2.0.0", BumpPatch, "2.0.1"},
		{"2.3.4", BumpMinor, "2.4.0"},
		{"3.0.0-beta", BumpMajor, "3.0.0"},
		{"3.0.0-beta", BumpPatch, "3.0.0"},
		{"3.1.2-rc.1", BumpMinor, "3.2.0"},
	}
	for _, tt := range tests {
		if got := MustParse(tt.from).Inc(tt.bump).String(); got != tt.want {
			t.Errorf("%s.Inc(%s) = %s, want %s", tt.from, tt.bump, got, tt.want)
		}
	}
}

func TestParseBump(t *testing.T) {
	if b, err := ParseBump(""); err != nil || b != BumpPatch {
		t.Errorf("ParseBump(\"\") = %s, %v", b, err)
	}
	if b, err := ParseBump("Minor"); err != nil || b != BumpMinor {
		t.Errorf("ParseBump(Minor) = %s, %v", b, err)
	}
	if _, err := ParseBump("huge"); err == nil {
		t.Error("ParseBump(huge) should fail")
	}
}

var rules = Rules{
	Major:   labels.NewSet("major-label"),
	Minor:   labels.NewSet("minor-label"),
	Patch:   labels.NewSet("patch-label"),
	Default: BumpPatch,
}

func withLabels(names ...string) []model.PullRequest {
	return []model.PullRequest{{Number: 1, Labels: names}, {Number: 2}}
}

func TestRules_BumpFor(t *testing.T) {
	tests := []struct {
		name   string
		rules  Rules
		labels []string
		want   Bump
	}{
		{"no labels uses default", rules, nil, BumpPatch},
		{"custom default", Rules{Default: BumpMinor}, nil, BumpMinor},
		{"patch only", rules, []string{"patch-label"}, BumpPatch},
		{"minor beats patch", rules, []string{"patch-label", "minor-label"}, BumpMinor},
		{"major beats others", rules, []string{"minor-label", "major-label"}, BumpMajor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rules.BumpFor(withLabels(tt.labels...)); got != tt.want {
				t.Errorf("BumpFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve_Precedence(t *testing.T) {
	base := Input{
		PreviousTag:  "v2.0.0",
		HasPrevious:  true,
		PullRequests: withLabels("minor-label"),
		Rules:        rules,
	}

	got, err := Resolve(base)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Resolved.String() != "2.1.0" || got.Source != SourceLabels {
		t.Errorf("Resolved = %s from %s, want 2.1.0 from labels", got.Resolved, got.Source)
	}
	if got.NextMajor.String() != "3.0.0" || got.NextMinor.String() != "2.1.0" || got.NextPatch.String() != "2.0.1" {
		t.Errorf("candidates = %s %s %s", got.NextMajor, got.NextMinor, got.NextPatch)
	}
	if got.Input != nil {
		t.Errorf("Input = %v, want nil", got.Input)
	}

	withVersion := base
	withVersion.VersionOverride = "2.1.1"
	withVersion.TagOverride = "v9.9.9"
	got, err = Resolve(withVersion)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Resolved.String() != "2.1.1" || got.Source != SourceVersionOverride {
		t.Errorf("Resolved = %s from %s, want 2.1.1 from version override", got.Resolved, got.Source)
	}

	withTag := base
	withTag.TagOverride = "v2.1.1-alpha"
	got, err = Resolve(withTag)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Resolved.Full() != "2.1.1" || got.Source != SourceTagOverride {
		t.Errorf("Resolved = %s from %s, want 2.1.1 from tag", got.Resolved, got.Source)
	}

	withName := base
	withName.NameOverride = "v2.1.1-alpha (Code name: Foxtrot Unicorn)"
	got, err = Resolve(withName)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Resolved.Full() != "2.1.1" || got.Source != SourceNameOverride {
		t.Errorf("Resolved = %s from %s, want 2.1.1 from name", got.Resolved, got.Source)
	}

	freeName := base
	freeName.NameOverride = "Foxtrot Unicorn"
	got, err = Resolve(freeName)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Resolved.String() != "2.1.0" {
		t.Errorf("Resolved = %s, want 2.1.0 when the name carries no version", got.Resolved)
	}
}

func TestResolve_NoPreviousRelease(t *testing.T) {
	got, err := Resolve(Input{Rules: rules})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Previous.String() != "0.0.0" || got.Resolved.String() != "0.0.1" {
		t.Errorf("Previous = %s, Resolved = %s", got.Previous, got.Resolved)
	}

	got, err = Resolve(Input{Base: "1.0.0", Rules: Rules{Default: BumpMinor}})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Resolved.String() != "1.1.0" {
		t.Errorf("Resolved = %s, want 1.1.0", got.Resolved)
	}
}

func TestResolve_PreviousFromName(t *testing.T) {
	got, err := Resolve(Input{PreviousTag: "latest", PreviousName: "Release 4.2.0", HasPrevious: true})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Previous.String() != "4.2.0" {
		t.Errorf("Previous = %s, want 4.2.0", got.Previous)
	}
}

func TestResolve_InvalidOverride(t *testing.T) {
	in := Input{PreviousTag: "v2.0.0", HasPrevious: true, TagOverride: "nightly"}

	_, err := Resolve(in)
	var parseErr *VersionParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Resolve() error = %v, want *VersionParseError", err)
	}
	if parseErr.Source != "tag" || parseErr.Input != "nightly" {
		t.Errorf("VersionParseError = %+v", parseErr)
	}

	in.VersionOverride = "latest"
	if _, err := Resolve(in); !errors.As(err, &parseErr) || parseErr.Source != "version" {
		t.Errorf("Resolve() error = %v, want version parse error", err)
	}

	in.FallbackOnInvalid = true
	got, err := Resolve(in)
	if err != nil {
		t.Fatalf("Resolve() with fallback error: %v", err)
	}
	if got.Resolved.String() != "2.0.1" || got.Input != nil {
		t.Errorf("Resolved = %s, Input = %v", got.Resolved, got.Input)
	}
}
