// Package redact removes credentials and personal data from database driver
// messages before they are written to logs.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	HexDigestPlaceholder  = "[REDACTED_DIGEST]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order. URL credentials go first so that the password
// rule does not see a half-redacted URL.
var rules = []rule{
	// user:password@ in postgres and sqlite URLs
	{regexp.MustCompile(`(?i)\b(postgres|postgresql|pgx|sqlite|file)://[^/@\s]+@`), "${1}://" + CredentialPlaceholder + "@"},
	// keyword/value DSNs: password=secret, sslpassword='secret'
	{regexp.MustCompile(`(?i)\b((?:ssl)?password|passwd|pwd)\s*=\s*('[^']*'|"[^"]*"|[^\s&]+)`), "${1}=" + CredentialPlaceholder},
	// identities recorded as created_by are often e-mail addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	// bundle content digests
	{regexp.MustCompile(`\b[0-9a-fA-F]{64}\b`), HexDigestPlaceholder},
}

// String returns s with every sensitive fragment replaced by a placeholder.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts err's message. A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
