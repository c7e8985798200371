package tokenizer

import (
	"strings"
	"unicode"
)

const sentencePieceSpace = '▁' // U+2581 LOWER ONE EIGHTH BLOCK

// normalize prepares text for tokenization following XLM-RoBERTa
// conventions: whitespace runs collapse to a single ▁, a dummy ▁ prefix is
// added before the first character, and trailing whitespace is dropped.
func normalize(text string) string {
	if text == "" {
		return ""
	}

	var builder strings.Builder
	needSpace := true // pending dummy prefix before the first non-space

	for _, r := range text {
		if unicode.IsSpace(r) {
			if builder.Len() > 0 {
				needSpace = true
			}
		} else {
			if needSpace {
				builder.WriteRune(sentencePieceSpace)
				needSpace = false
			}
			builder.WriteRune(r)
		}
	}

	return builder.String()
}
