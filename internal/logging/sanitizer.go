package logging

import "regexp"

// RedactedText is the replacement text for sensitive data
const RedactedText = "[REDACTED]"

var (
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host
	connStringPattern = regexp.MustCompile(`://([^:/@\s]+):[^@\s]+@`)

	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+\S+`)

	// Hugging Face access tokens
	hubTokenPattern = regexp.MustCompile(`hf_[A-Za-z0-9]{8,}`)
)

// RedactDSN removes the password from a key/value or URL style connection
// string. The user name is kept so the target stays identifiable.
func RedactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(dsn, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://${1}:"+RedactedText+"@")
}

// RedactError sanitizes error text that might carry credentials.
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := RedactDSN(err.Error())
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	return hubTokenPattern.ReplaceAllString(sanitized, RedactedText)
}
