package template

import (
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		values Placeholders
		want   string
	}{
		{
			name:   "empty template",
			tmpl:   "",
			values: Placeholders{"TITLE": "x"},
			want:   "",
		},
		{
			name:   "no values",
			tmpl:   "* $TITLE",
			values: nil,
			want:   "* $TITLE",
		},
		{
			name:   "single substitution",
			tmpl:   "* $TITLE (#$NUMBER) @$AUTHOR",
			values: Placeholders{"TITLE": "Add docs", "NUMBER": "5", "AUTHOR": "octocat"},
			want:   "* Add docs (#5) @octocat",
		},
		{
			name:   "unknown placeholder preserved",
			tmpl:   "Costs $DOLLARS, made by $AUTHOR",
			values: Placeholders{"AUTHOR": "octocat"},
			want:   "Costs $DOLLARS, made by octocat",
		},
		{
			name:   "lowercase and digits are literal",
			tmpl:   "echo $home and $5",
			values: Placeholders{"HOME": "x"},
			want:   "echo $home and $5",
		},
		{
			name:   "longest name wins",
			tmpl:   "$RESOLVED_VERSION_MAJOR / $RESOLVED_VERSION",
			values: Placeholders{"RESOLVED_VERSION": "2.1.0", "RESOLVED_VERSION_MAJOR": "2"},
			want:   "2 / 2.1.0",
		},
		{
			name:   "values are not expanded again",
			tmpl:   "$CHANGES",
			values: Placeholders{"CHANGES": "* mentions $RESOLVED_VERSION", "RESOLVED_VERSION": "1.0.0"},
			want:   "* mentions $RESOLVED_VERSION",
		},
		{
			name:   "same placeholder multiple times",
			tmpl:   "v$MAJOR.$MINOR.$PATCH ($MAJOR)",
			values: Placeholders{"MAJOR": "3", "MINOR": "0", "PATCH": "1"},
			want:   "v3.0.1 (3)",
		},
		{
			name:   "empty value substitution",
			tmpl:   "Previous tag: '$PREVIOUS_TAG'",
			values: Placeholders{"PREVIOUS_TAG": ""},
			want:   "Previous tag: ''",
		},
		{
			name:   "multiline template",
			tmpl:   "# What's Changed\n\n$CHANGES\n",
			values: Placeholders{"CHANGES": "* a\n* b"},
			want:   "# What's Changed\n\n* a\n* b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.tmpl, tt.values)
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	if got := Merge(nil, Placeholders{}); got != nil {
		t.Errorf("Merge() = %v, want nil", got)
	}

	got := Merge(
		Placeholders{"A": "1", "B": "2"},
		Placeholders{"B": "override"},
		Placeholders{"C": "3"},
	)
	want := Placeholders{"A": "1", "B": "override", "C": "3"}
	if len(got) != len(want) {
		t.Fatalf("Merge() has %d keys, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Merge()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
