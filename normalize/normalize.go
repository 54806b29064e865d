package normalize

import (
	"strings"
)

// MaxSeqLen is the input limit of the classification model. Longer texts are
// truncated before scoring.
const MaxSeqLen = 512

// Clean prepares a raw text value for scoring. It trims surrounding
// whitespace and truncates to MaxSeqLen runes. An absent value becomes the
// empty string. Clean never fails.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	runes := []rune(text)
	if len(runes) > MaxSeqLen {
		return string(runes[:MaxSeqLen])
	}
	return text
}
