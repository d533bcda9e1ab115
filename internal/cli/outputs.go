package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/andywolf/release-drafter/internal/drafter"
)

// output is a named step output.
type output struct {
	name  string
	value string
}

// releaseOutputs returns the step outputs for a run: the created or updated
// release, or the planned one on a dry run.
func releaseOutputs(result *drafter.Result) []output {
	info := result.Action.Info
	outs := []output{
		{"tag_name", info.TagName},
		{"name", info.Name},
		{"body", info.Body},
		{"resolved_version", result.Versions.Resolved.String()},
		{"major_version", strconv.Itoa(result.Versions.Resolved.Major)},
		{"minor_version", strconv.Itoa(result.Versions.Resolved.Minor)},
		{"patch_version", strconv.Itoa(result.Versions.Resolved.Patch)},
	}
	if r := result.Release; r != nil {
		outs = append(outs,
			output{"id", strconv.FormatInt(r.ID, 10)},
			output{"html_url", r.HTMLURL},
			output{"upload_url", r.UploadURL},
		)
	}
	return outs
}

// writeOutputs appends outputs in the GitHub Actions file command format.
// Every value uses a heredoc with a random delimiter so multi-line bodies
// cannot terminate it early.
func writeOutputs(w io.Writer, outs []output) error {
	for _, o := range outs {
		delimiter := "ghadelimiter_" + uuid.New().String()
		if strings.Contains(o.value, delimiter) {
			return fmt.Errorf("output %s contains its delimiter", o.name)
		}
		if _, err := fmt.Fprintf(w, "%s<<%s\n%s\n%s\n", o.name, delimiter, o.value, delimiter); err != nil {
			return fmt.Errorf("failed to write output %s: %w", o.name, err)
		}
	}
	return nil
}

// emitOutputs writes outputs to $GITHUB_OUTPUT when running in Actions and
// to w otherwise.
func emitOutputs(w io.Writer, outs []output) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		for _, o := range outs {
			if o.name == "body" {
				fmt.Fprintf(w, "%s:\n%s\n", o.name, o.value)
				continue
			}
			fmt.Fprintf(w, "%s: %s\n", o.name, o.value)
		}
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open GITHUB_OUTPUT: %w", err)
	}
	if err := writeOutputs(f, outs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
