package outline

import (
	"sort"
	"strings"
)

// extractKeywords returns up to max lowercase, unique keywords ranked by
// weighted frequency. Unigrams need four runes; bigrams of adjacent
// content words weigh 1.5 and never span a sentence break. In Vietnamese
// text a token is a syllable, so bigrams rank ahead of every unigram.
// Ties keep first-occurrence order.
func extractKeywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}
	type stat struct {
		score  float64
		first  int
		bigram bool
	}
	stats := make(map[string]*stat)
	var order []string
	add := func(k string, w float64, pos int, bigram bool) {
		s, ok := stats[k]
		if !ok {
			s = &stat{first: pos, bigram: bigram}
			stats[k] = s
			order = append(order, k)
		}
		s.score += w
	}

	content := func(t string) bool {
		return runeLen(t) >= 2 && !isNumeric(t) && !isStopword(t)
	}
	pos := 0
	for _, sentence := range strings.FieldsFunc(text, isSentenceBreak) {
		toks := tokenize(sentence)
		for i, t := range toks {
			if !content(t) {
				continue
			}
			if runeLen(t) >= 4 {
				add(t, 1, pos+i, false)
			}
			if i+1 < len(toks) && content(toks[i+1]) {
				add(t+" "+toks[i+1], 1.5, pos+i, true)
			}
		}
		pos += len(toks)
	}

	syllabic := vietnameseText(text)
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := stats[order[a]], stats[order[b]]
		if syllabic && sa.bigram != sb.bigram {
			return sa.bigram
		}
		if sa.score != sb.score {
			return sa.score > sb.score
		}
		return sa.first < sb.first
	})
	if len(order) > max {
		order = order[:max]
	}
	return order
}

func isSentenceBreak(r rune) bool {
	switch r {
	case '.', '!', '?', ';':
		return true
	}
	return false
}

// unionKeywords merges keyword lists keeping order and the cap.
func unionKeywords(max int, lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l...)
	}
	return cleanKeywords(all, max)
}

// keywordTitle builds a deterministic title from the top keywords.
func keywordTitle(body string) string {
	kws := extractKeywords(body, 3)
	if len(kws) == 0 {
		words := meaningfulTokens(body)
		if len(words) > 6 {
			words = words[:6]
		}
		if len(words) == 0 {
			return ""
		}
		kws = []string{strings.Join(words, " ")}
	}
	return capitalize(strings.Join(kws, ", "))
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
