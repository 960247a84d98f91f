// Package redact scrubs credentials from strings before they are logged.
// The client sends signed bearer tokens and may be configured with a signing
// secret or a URL carrying userinfo; none of these may reach a log line.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Precompiled rules, applied in order.
var rules = []rule{
	// Three-part base64url JWT.
	{
		re:   regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		repl: RedactedJWTPlaceholder,
	},
	// Authorization header values other than JWTs.
	{
		re:   regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9_\-.~+/]{8,}=*`),
		repl: "${1} " + RedactedCredentialPlaceholder,
	},
	// user:password@ in URLs.
	{
		re:   regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^/\s:@]+:[^/\s@]+@`),
		repl: "${1}" + RedactedCredentialPlaceholder + "@",
	},
	// password=..., password: "..."
	{
		re:   regexp.MustCompile(`(?i)\b(password|passwd|pwd)(['"]?\s*[=:]\s*['"]?)[^'"&\s]{3,}`),
		repl: "${1}${2}" + RedactedCredentialPlaceholder,
	},
	// api_key=..., jwt_secret: ..., token=...
	{
		re:   regexp.MustCompile(`(?i)\b(api[_-]?key|jwt[_-]?secret|secret|token)(['"]?\s*[=:]\s*['"]?)[A-Za-z0-9_\-.~+/!]{8,}`),
		repl: "${1}${2}" + RedactedKeyPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.repl)
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
