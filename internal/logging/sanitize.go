package logging

import (
	"regexp"
	"sort"
	"strings"
)

var (
	githubTokenPattern = regexp.MustCompile(`(gh[pousr]_[A-Za-z0-9]{36,}|github_pat_[A-Za-z0-9]{22}_[A-Za-z0-9]{59})`)
	bearerTokenPattern = regexp.MustCompile(`(?i)(bearer)[[:space:]]+([A-Za-z0-9_\-\.]{8,})`)
	privateKeyPattern  = regexp.MustCompile(`(?s)-----BEGIN[[:space:]]+(?:RSA[[:space:]]+)?PRIVATE[[:space:]]+KEY-----.*?-----END[[:space:]]+(?:RSA[[:space:]]+)?PRIVATE[[:space:]]+KEY-----`)
	urlPasswordPattern = regexp.MustCompile(`(?i)(https?)://[^:/@\s]+:([^@\s]+)@`)
	jwtPattern         = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`)
)

// Sanitizer redacts credentials from log messages.
type Sanitizer struct {
	secrets []string
}

// NewSanitizer creates a Sanitizer that additionally redacts the given
// literal values, such as the configured API token.
func NewSanitizer(secrets ...string) *Sanitizer {
	var keep []string
	for _, s := range secrets {
		if len(s) >= 4 {
			keep = append(keep, s)
		}
	}
	// Longest first so a secret containing another is redacted whole.
	sort.Slice(keep, func(i, j int) bool { return len(keep[i]) > len(keep[j]) })
	return &Sanitizer{secrets: keep}
}

// Sanitize removes or masks sensitive information from a log message.
func (s *Sanitizer) Sanitize(message string) string {
	for _, secret := range s.secrets {
		message = strings.ReplaceAll(message, secret, "[REDACTED]")
	}

	message = privateKeyPattern.ReplaceAllString(message, "[REDACTED-PRIVATE-KEY]")
	message = jwtPattern.ReplaceAllString(message, "[REDACTED-JWT]")
	message = githubTokenPattern.ReplaceAllString(message, "[REDACTED-GITHUB-TOKEN]")
	message = bearerTokenPattern.ReplaceAllString(message, "${1} [REDACTED]")
	message = urlPasswordPattern.ReplaceAllString(message, "${1}://[REDACTED]@")
	return message
}
