package retry

import "strings"

// retryableMarkers are case-insensitive substrings in CLI diagnostics that
// indicate a transient condition: quota exhaustion, rate limiting, or an
// upstream server hiccup. Extend the table rather than adding conditionals.
var retryableMarkers = []string{
	"quota",
	"exhausted",
	"rate limit",
	"ratelimit",
	"too many requests",
	"429",
	"503",
	"502",
	"service unavailable",
	"bad gateway",
	"overloaded",
	"try again",
}

// RetryableText reports whether the diagnostic text matches any transient
// marker. Authentication failures, malformed arguments, and everything else
// not in the table are fatal.
func RetryableText(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range retryableMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
