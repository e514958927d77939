package engine

import "strings"

// DefaultMinAnswerWords is the word count below which a non-clarifying
// reply is sent back for elaboration.
const DefaultMinAnswerWords = 12

// clarificationMarkers are matched case-insensitively anywhere in a reply.
var clarificationMarkers = []string{
	"specify",
	"clarify",
	"which",
	"provide more details",
	"please choose",
	"could you specify",
	"could you clarify",
	"could you provide",
	"need more information",
	"please provide",
	"i also need",
}

// IsClarification reports whether a model reply reads as a request for
// missing input rather than a final answer: it ends in a question mark or
// contains one of the known clarification markers.
func IsClarification(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range clarificationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
