package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/outline"
)

const (
	maxTitleRunes   = 120
	maxSummaryRunes = 600
	maxKeywords     = 12
	maxKeywordRunes = 60
	maxOutlineItems = 10
	maxOutlineRunes = 160
)

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions)`,
)

var titlePrefix = regexp.MustCompile(`(?i)^(title|tiêu đề)\s*:\s*`)

// ValidateTitle cleans a model answer into a single-line title.
func ValidateTitle(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = titlePrefix.ReplaceAllString(s, "")
	s = strings.Trim(s, "\"'`*# ")
	s = strings.Join(strings.Fields(s), " ")
	n := utf8.RuneCountInString(s)
	if n < 3 || n > maxTitleRunes {
		return "", false
	}
	if injectionPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// ValidateEnrichment trims an enrichment in place and reports whether
// anything usable is left.
func ValidateEnrichment(en *outline.Enrichment) bool {
	if en == nil {
		return false
	}
	en.Summary = strings.TrimSpace(en.Summary)
	if utf8.RuneCountInString(en.Summary) > maxSummaryRunes || injectionPattern.MatchString(en.Summary) {
		en.Summary = ""
	}
	en.Keywords = keepShort(en.Keywords, maxKeywords, maxKeywordRunes)
	en.Outline = keepShort(en.Outline, maxOutlineItems, maxOutlineRunes)
	return en.Summary != "" || len(en.Keywords) > 0 || len(en.Outline) > 0
}

func keepShort(items []string, maxItems, maxRunes int) []string {
	out := make([]string, 0, min(len(items), maxItems))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || utf8.RuneCountInString(it) > maxRunes || injectionPattern.MatchString(it) {
			continue
		}
		out = append(out, it)
		if len(out) == maxItems {
			break
		}
	}
	return out
}
