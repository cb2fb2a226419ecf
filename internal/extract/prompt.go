package extract

import (
	"fmt"
	"strings"
)

// maxPromptBody caps the topic text sent per call, in runes.
const maxPromptBody = 6000

const TitleSystemPrompt = `You name sections of study material. Given the text of one topic and its current heading, reply with a better title for a learner's outline.

Rules:
- Keep the language of the source text
- 3 to 12 words, no numbering, no "Chapter"/"Chương"/"Bài" labels
- Name the subject matter, not the document structure
- If the current heading is already good, repeat it unchanged

Respond with ONLY the title on one line.`

const EnrichSystemPrompt = `You prepare study outlines. Given the text of one topic, return a JSON object with these fields:

- "summary": two or three sentences a learner can read before studying the topic (string, max 500 chars)
- "keywords": the key terms of the topic, lowercase (list of strings, max 10)
- "outline": the sub-points in reading order (list of short strings, max 8)

Rules:
- Write in the language of the source text
- Use only what the text says
- Return empty lists rather than guessing

Respond with ONLY the JSON object, no other text.`

// BuildTitlePrompt renders the user message for a title rewrite.
func BuildTitlePrompt(body, oldTitle string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Current heading: %q\n", oldTitle))
	sb.WriteString("---\n")
	sb.WriteString(clip(body, maxPromptBody))
	return sb.String()
}

// BuildEnrichPrompt renders the user message for topic enrichment.
func BuildEnrichPrompt(body, title string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Topic: %q\n", title))
	sb.WriteString("---\n")
	sb.WriteString(clip(body, maxPromptBody))
	return sb.String()
}

func clip(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
