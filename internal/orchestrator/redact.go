package orchestrator

import "regexp"

// maxLoggedLen bounds how much of a task or unit output lands in the log.
const maxLoggedLen = 200

// redactPatterns match credential-shaped substrings: key/value assignments,
// bearer tokens, and long base64-looking runs.
var redactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|token|password|secret)["']?\s*[:=]\s*["']?[\w\-]+`),
	regexp.MustCompile(`(?i)Bearer\s+[\w\-]+`),
	regexp.MustCompile(`[A-Za-z0-9+/]{32,}={0,2}`),
}

// sanitizeForLog truncates data to maxLoggedLen and redacts anything that
// looks like a credential. Truncation happens first so the redaction only
// has to look at what is actually logged.
func sanitizeForLog(data string) string {
	if data == "" {
		return ""
	}
	if len(data) > maxLoggedLen {
		data = data[:maxLoggedLen] + "... [truncated]"
	}
	for _, re := range redactPatterns {
		data = re.ReplaceAllString(data, "[REDACTED]")
	}
	return data
}
