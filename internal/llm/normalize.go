package llm

import "strings"

const fence = "```"

// Normalize extracts the best-guess JSON payload from a raw completion.
//
// Markdown fencing is removed first. Then the first-'{'-to-last-'}' span and
// the first-'['-to-last-']' span are located; when both exist the one that
// starts earlier wins, so stray braces inside a trailing explanation cannot
// hijack a leading array. When neither exists the cleaned text is returned
// unchanged and decoding fails downstream. Escape sequences are left alone.
func Normalize(text string) string {
	s := stripFences(text)

	objStart, objEnd := strings.Index(s, "{"), strings.LastIndex(s, "}")
	arrStart, arrEnd := strings.Index(s, "["), strings.LastIndex(s, "]")

	hasObj := objStart >= 0 && objEnd > objStart
	hasArr := arrStart >= 0 && arrEnd > arrStart

	switch {
	case hasObj && hasArr:
		if arrStart < objStart {
			return s[arrStart : arrEnd+1]
		}
		return s[objStart : objEnd+1]
	case hasObj:
		return s[objStart : objEnd+1]
	case hasArr:
		return s[arrStart : arrEnd+1]
	default:
		return s
	}
}

// stripFences trims whitespace and removes an opening code fence (with or
// without a language tag) and a trailing closing fence.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		s = s[languageTagLen(s):]
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSpace(strings.TrimSuffix(s, fence))
	}
	return s
}

// languageTagLen returns the length of the info string directly after an
// opening fence, e.g. "json" or "JSON5".
func languageTagLen(s string) int {
	for i, r := range s {
		isTag := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			r == '-' || r == '_' || r == '+' || r == '.'
		if !isTag {
			return i
		}
	}
	return len(s)
}

// looksLikeJSON reports whether normalized text can only be an object or array.
func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
