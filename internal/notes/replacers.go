package notes

import (
	"fmt"
	"regexp"
	"strings"
)

// Replacer is a search/replace pair applied to the rendered body.
// Search is either a literal string or a /pattern/flags regular expression.
type Replacer struct {
	Search  string
	Replace string
}

type replaceFunc func(string) string

// compileReplacers turns configured replacers into functions. Literal
// searches and regular expressions without the g flag replace only the first
// occurrence.
func compileReplacers(replacers []Replacer) ([]replaceFunc, error) {
	funcs := make([]replaceFunc, 0, len(replacers))
	for i, r := range replacers {
		fn, err := compileReplacer(r)
		if err != nil {
			return nil, fmt.Errorf("replacers[%d]: %w", i, err)
		}
		funcs = append(funcs, fn)
	}
	return funcs, nil
}

func compileReplacer(r Replacer) (replaceFunc, error) {
	if r.Search == "" {
		return nil, fmt.Errorf("search must not be empty")
	}

	pattern, flags, isRegexp := splitRegexpLiteral(r.Search)
	if !isRegexp {
		search, replace := r.Search, r.Replace
		return func(s string) string {
			return strings.Replace(s, search, replace, 1)
		}, nil
	}

	prefix := ""
	global := false
	for _, f := range flags {
		switch f {
		case 'g':
			global = true
		case 'i', 'm', 's':
			prefix += string(f)
		default:
			return nil, fmt.Errorf("unsupported regular expression flag %q in %s", f, r.Search)
		}
	}
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %s: %w", r.Search, err)
	}

	replace := r.Replace
	if global {
		return func(s string) string {
			return re.ReplaceAllString(s, replace)
		}, nil
	}
	return func(s string) string {
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			return s
		}
		expanded := re.ExpandString(nil, replace, s, loc)
		return s[:loc[0]] + string(expanded) + s[loc[1]:]
	}, nil
}

// splitRegexpLiteral splits "/pattern/flags" into its parts.
func splitRegexpLiteral(s string) (pattern, flags string, ok bool) {
	if len(s) < 2 || s[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndex(s, "/")
	if end <= 0 {
		return "", "", false
	}
	return s[1:end], s[end+1:], true
}

// ValidateReplacers reports the first replacer that does not compile.
func ValidateReplacers(replacers []Replacer) error {
	_, err := compileReplacers(replacers)
	return err
}
