package validators

import (
	"net/http"
	"strings"
)

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// QueryString returns a trimmed, length-capped query parameter.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}
