package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andywolf/release-drafter/internal/version"
)

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		args      []string
		wantLines int
		wantStart string
	}{
		{args: []string{}, wantLines: 1, wantStart: "release-drafter "},
		{args: []string{"--full"}, wantLines: 5, wantStart: "release-drafter "},
	}

	for _, tt := range tests {
		t.Run(strings.Join(append([]string{"version"}, tt.args...), " "), func(t *testing.T) {
			var out bytes.Buffer
			cmd := newVersionCmd()
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}

			got := strings.TrimSuffix(out.String(), "\n")
			if n := len(strings.Split(got, "\n")); n != tt.wantLines {
				t.Errorf("output has %d lines, want %d: %q", n, tt.wantLines, got)
			}
			if !strings.HasPrefix(got, tt.wantStart) {
				t.Errorf("output = %q, want prefix %q", got, tt.wantStart)
			}
		})
	}
}

func TestPrintVersion(t *testing.T) {
	b := version.Build{Version: "v3.1.0", Commit: "feedface00", BuildDate: "today", GoVersion: "go1.22", Platform: "darwin/arm64"}

	var out bytes.Buffer
	if err := printVersion(&out, b, false); err != nil {
		t.Fatalf("printVersion() error: %v", err)
	}
	want := "release-drafter v3.1.0 (commit: feedfac, built: today, go: go1.22)\n"
	if out.String() != want {
		t.Errorf("printVersion() = %q, want %q", out.String(), want)
	}
}
