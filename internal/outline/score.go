package outline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// evidence is the set of independent text spans used to validate topics.
// It is never derived from a topic's own body.
type evidence struct {
	lower  []string
	tokens []map[string]struct{}
	strict bool

	// syllabic is set for Vietnamese evidence, where one token is one
	// syllable and single-token keywords match almost any unit.
	syllabic bool
}

// buildEvidence uses the chunk texts when any reach minLen (strict mode),
// otherwise the blank-line-delimited paragraphs of the full text.
func buildEvidence(fullText string, chunks []string, minLen int) evidence {
	var units []string
	for _, c := range chunks {
		if runeLen(strings.TrimSpace(c)) >= minLen {
			units = append(units, c)
		}
	}
	strict := len(units) > 0
	if !strict {
		for _, p := range splitParagraphs(fullText) {
			if runeLen(p) >= minLen {
				units = append(units, p)
			}
		}
	}
	ev := evidence{strict: strict, syllabic: vietnameseText(strings.Join(units, " "))}
	for _, u := range units {
		ev.lower = append(ev.lower, strings.ToLower(strings.Join(strings.Fields(u), " ")))
		ev.tokens = append(ev.tokens, tokenSet(meaningfulTokens(u)))
	}
	return ev
}

const mentionKeywords = 12

// mentions counts the evidence units that mention the topic.
func (ev evidence) mentions(t Topic) int {
	title := strings.ToLower(strings.Join(strings.Fields(t.Title), " "))
	titleToks := tokenSet(meaningfulTokens(t.Title))
	kws := t.Keywords
	if len(kws) > mentionKeywords {
		kws = kws[:mentionKeywords]
	}
	kwToks := make([]map[string]struct{}, len(kws))
	for i, k := range kws {
		kwToks[i] = tokenSet(meaningfulTokens(k))
	}

	n := 0
	for i, unit := range ev.lower {
		if ev.mentioned(i, unit, title, titleToks, kws, kwToks) {
			n++
		}
	}
	return n
}

func (ev evidence) mentioned(i int, unit, title string, titleToks map[string]struct{}, kws []string, kwToks []map[string]struct{}) bool {
	if title != "" && containsPhrase(unit, title) {
		return true
	}
	if overlap(titleToks, ev.tokens[i]) >= 2 {
		return true
	}
	for j, k := range kws {
		if ev.syllabic && len(kwToks[j]) < 2 {
			continue
		}
		if containsPhrase(unit, k) {
			return true
		}
		if len(kwToks[j]) >= 2 && overlap(kwToks[j], ev.tokens[i]) >= 2 {
			return true
		}
	}
	return false
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// containsPhrase reports a case-sensitive match of needle in hay that
// starts and ends on word boundaries. Both are expected lowercase.
func containsPhrase(hay, needle string) bool {
	if needle == "" {
		return false
	}
	for off := 0; off <= len(hay)-len(needle); {
		i := strings.Index(hay[off:], needle)
		if i < 0 {
			return false
		}
		s := off + i
		e := s + len(needle)
		before := s == 0
		if !before {
			r, _ := utf8.DecodeLastRuneInString(hay[:s])
			before = !isWordRune(r)
		}
		if before && boundaryAfter(hay, e) {
			return true
		}
		off = s + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// scoreTopics sets coverage and confidence. In strict mode topics with too
// few mentions are dropped; otherwise they are kept and flagged.
func scoreTopics(topics []Topic, ev evidence, opts Options) []Topic {
	total := len(ev.lower)
	out := topics[:0]
	for _, t := range topics {
		m := 0
		if total > 0 {
			m = ev.mentions(t)
		}
		t.mentions = m
		if total > 0 {
			t.CoverageScore = clamp01(float64(m) / float64(total))
		}
		t.Confidence = tier(t.CoverageScore, opts)
		if ev.strict && m < opts.StrictMinMentions {
			continue
		}
		t.NeedsReview = t.TextOnly || (!ev.strict && m < opts.StrictMinMentions)
		out = append(out, t)
	}
	return out
}

func tier(score float64, opts Options) ConfidenceTier {
	switch {
	case score >= opts.HighCoverage:
		return ConfidenceHigh
	case score >= opts.MediumCoverage:
		return ConfidenceMedium
	}
	return ConfidenceLow
}
