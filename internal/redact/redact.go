// Package redact strips connection strings, credentials, file paths, SQL,
// and stack traces from text before it is logged. Store errors often carry
// driver messages that include such details.
package redact

import (
	"net/url"
	"regexp"
)

// Placeholders substituted for redacted text.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	PathPlaceholder       = "[REDACTED_PATH]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	HostPlaceholder       = "[REDACTED_HOST]"
	StackTracePlaceholder = "[STACK_TRACE_REDACTED]"
)

// rule replaces every match of pattern with replacement. Rules run in
// order, so earlier rules see the unmodified text.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

var rules = []rule{
	// user:password@ in postgres, postgresql, and file URLs
	{
		pattern:     regexp.MustCompile(`(?i)\b((?:postgres(?:ql)?|file|sqlite)://)[^@\s/]+@`),
		replacement: "${1}" + CredentialPlaceholder + "@",
	},
	// password=... in keyword/value DSNs
	{
		pattern:     regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*('[^']*'|"[^"]*"|[^\s&'"]+)`),
		replacement: CredentialPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		replacement: StackTracePlaceholder,
	},
	{
		pattern: regexp.MustCompile(
			`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\b[\s\w,*()=?$.'"-]+?\b(FROM|INTO|SET|TABLE)\b[\s\w,*()=?$.'"-]*`,
		),
		replacement: SQLPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(/[\w.-]+){2,}`),
		replacement: PathPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(\\[^\\\s]+)+`),
		replacement: PathPlaceholder,
	},
	// host:port pairs such as "dial tcp 10.0.0.5:5432"
	{
		pattern:     regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}:\d{1,5}\b|\blocalhost:\d{1,5}\b`),
		replacement: HostPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// URL masks the password of a database URL for logging. Values that do not
// parse as URLs, such as SQLite file paths, are returned unchanged.
func URL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User == nil {
		return dbURL
	}
	return parsed.Redacted()
}
