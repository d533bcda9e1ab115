// Package template provides $PLACEHOLDER substitution for release note templates.
package template

import (
	"regexp"
)

// placeholderPattern matches $UPPER_CASE placeholders.
var placeholderPattern = regexp.MustCompile(`\$[A-Z][A-Z_]*`)

// Placeholders maps placeholder names, without the leading '$', to values.
type Placeholders map[string]string

// Render substitutes $NAME placeholders in tmpl with values from the provided
// table. Unknown placeholders (those not in the table) are left as-is, so
// templates may contain literal dollar-sign text. Substitution is a single
// pass: values are never expanded again.
func Render(tmpl string, values Placeholders) string {
	if len(values) == 0 || tmpl == "" {
		return tmpl
	}

	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		if value, ok := values[match[1:]]; ok {
			return value
		}

		// Unknown placeholder: leave as-is
		return match
	})
}

// Merge merges placeholder tables. Later tables take precedence over earlier
// ones on name collision.
func Merge(tables ...Placeholders) Placeholders {
	size := 0
	for _, t := range tables {
		size += len(t)
	}
	if size == 0 {
		return nil
	}

	result := make(Placeholders, size)
	for _, t := range tables {
		for k, v := range t {
			result[k] = v
		}
	}
	return result
}
