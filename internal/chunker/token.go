package chunker

import (
	"strings"
	"unicode/utf8"
)

const tokensPerWord = 1.33

// EstimateTokens gives a rough token count: about 1.33 tokens per word,
// or one per four runes for text written without spaces.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(len(strings.Fields(text))) * tokensPerWord)
	if byRunes := utf8.RuneCountInString(text) / 4; byRunes > tokens*2 {
		tokens = byRunes
	}
	if tokens < 1 && strings.TrimSpace(text) != "" {
		tokens = 1
	}
	return tokens
}
