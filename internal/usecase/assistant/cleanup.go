package assistant

import "strings"

const rowResponsePrefix = "Row(RESPONSE="

// CleanResponse turns the raw row rendering of a completion into display text:
// the Row(RESPONSE=...) wrapper is stripped, escaped and real newline runs become
// single spaces, and surrounding whitespace is trimmed. The transform is applied
// until nothing changes, so CleanResponse(CleanResponse(x)) == CleanResponse(x).
func CleanResponse(raw string) string {
	cleaned := cleanOnce(raw)
	for {
		next := cleanOnce(cleaned)
		if next == cleaned {
			return cleaned
		}
		cleaned = next
	}
}

func cleanOnce(s string) string {
	s = strings.TrimSpace(s)
	for len(s) > len(rowResponsePrefix) && strings.HasPrefix(s, rowResponsePrefix) && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[len(rowResponsePrefix) : len(s)-1])
	}

	s = strings.ReplaceAll(s, `\n\n`, " ")
	s = strings.ReplaceAll(s, "\n\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	return strings.TrimSpace(s)
}
