// Package trigger decides whether a pushed ref should produce a draft.
package trigger

import (
	"fmt"
	"regexp"
	"strings"
)

var refPrefix = regexp.MustCompile(`^refs/(heads|tags)/`)

// ShortRef strips refs/heads/ or refs/tags/ from ref.
func ShortRef(ref string) string {
	return refPrefix.ReplaceAllString(ref, "")
}

// IsTriggerable reports whether ref matches one of the reference patterns.
// Patterns may carry a refs/heads/ or refs/tags/ prefix and are unanchored
// regular expressions searched in the short ref, so "master" also accepts
// "master-hotfix". Anchor a pattern with ^ and $ to match a ref exactly.
// An empty pattern list accepts every ref.
func IsTriggerable(ref string, references []string) (bool, error) {
	if len(references) == 0 {
		return true, nil
	}
	patterns := make([]string, 0, len(references))
	for _, r := range references {
		patterns = append(patterns, ShortRef(strings.TrimSpace(r)))
	}
	re, err := regexp.Compile(strings.Join(patterns, "|"))
	if err != nil {
		return false, fmt.Errorf("invalid reference patterns %q: %w", references, err)
	}
	return re.MatchString(ShortRef(ref)), nil
}
