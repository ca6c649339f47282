package payu

import (
	"regexp"
	"strings"
)

const filtered = "[FILTERED]"

// Members of a JSON transcript that carry secrets. The optional backslashes
// match transcripts in which the payload itself is an escaped JSON string.
var (
	numberPattern       = regexp.MustCompile(`(\\?"number\\?"\s*:\s*\\?")[\d\s-]+`)
	securityCodePattern = regexp.MustCompile(`(\\?"securityCode\\?"\s*:\s*\\?")\d+`)
	apiKeyPattern       = regexp.MustCompile(`(\\?"apiKey\\?"\s*:\s*\\?")[^"\\]+`)
)

// Scrub redacts card numbers, security codes and the API key from a request or
// response transcript. Scrubbing an already scrubbed transcript changes nothing.
func Scrub(transcript, apiKey string) string {
	out := numberPattern.ReplaceAllString(transcript, "${1}"+filtered)
	out = securityCodePattern.ReplaceAllString(out, "${1}"+filtered)
	out = apiKeyPattern.ReplaceAllString(out, "${1}"+filtered)
	if apiKey != "" && !strings.Contains(filtered, apiKey) {
		out = replaceWhole(out, apiKey)
	}
	return out
}

// replaceWhole replaces occurrences of key that are not part of a longer word,
// so a short key never rewrites command names or other payload text.
func replaceWhole(s, key string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, key)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := i + len(key)
		if (i > 0 && isWordByte(s[i-1])) || (end < len(s) && isWordByte(s[end])) {
			b.WriteString(s[:i+1])
			s = s[i+1:]
			continue
		}
		b.WriteString(s[:i])
		b.WriteString(filtered)
		s = s[end:]
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
