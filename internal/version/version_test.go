package version

import (
	"strings"
	"testing"
)

var testBuild = Build{
	Version:   "v1.4.0",
	Commit:    "0123456789abcdef",
	BuildDate: "2024-05-01T12:00:00Z",
	GoVersion: "go1.22.3",
	Platform:  "linux/amd64",
}

func TestBuild_ShortCommit(t *testing.T) {
	tests := []struct {
		commit string
		want   string
	}{
		{commit: "0123456789abcdef", want: "0123456"},
		{commit: "0123456", want: "0123456"},
		{commit: "abc", want: "abc"},
		{commit: "", want: ""},
	}
	for _, tt := range tests {
		b := Build{Commit: tt.commit}
		if got := b.ShortCommit(); got != tt.want {
			t.Errorf("ShortCommit(%q) = %q, want %q", tt.commit, got, tt.want)
		}
	}
}

func TestBuild_Forms(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "user agent",
			got:  testBuild.UserAgent(),
			want: "release-drafter/v1.4.0",
		},
		{
			name: "info",
			got:  testBuild.Info(),
			want: "release-drafter v1.4.0 (commit: 0123456, built: 2024-05-01T12:00:00Z, go: go1.22.3)",
		},
		{
			name: "full",
			got:  testBuild.Full(),
			want: strings.Join([]string{
				"release-drafter v1.4.0",
				"  Commit:     0123456789abcdef",
				"  Built:      2024-05-01T12:00:00Z",
				"  Go version: go1.22.3",
				"  OS/Arch:    linux/amd64",
			}, "\n"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestCurrent_FromLinkerVariables(t *testing.T) {
	saved := Version
	t.Cleanup(func() { Version = saved })

	Version = " v2.0.0\n"
	if got := Short(); got != "v2.0.0" {
		t.Errorf("Short() = %q, want v2.0.0", got)
	}
	if got := UserAgent(); got != "release-drafter/v2.0.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}
