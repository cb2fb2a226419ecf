package outline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	reLeadingIndex = regexp.MustCompile(`^(\d+(?:\.\d+)*|[IVXLC]+)\s*[.):\-–—]?\s+`)
	reTopicPrefix  = regexp.MustCompile(`^(chu de|topic)\s*[:\-–—]\s*`)
)

var knownAcronyms = map[string]bool{
	"DNA": true, "RNA": true, "ADN": true, "ARN": true, "ATP": true, "AI": true, "IT": true,
	"CPU": true, "GPU": true, "GDP": true, "HIV": true, "AIDS": true, "USA": true, "UK": true,
	"EU": true, "UN": true, "WTO": true, "API": true, "SQL": true, "HTML": true, "CSS": true,
	"PH": true, "IOT": true, "VAT": true, "OSI": true,
}

var romanNumerals = map[string]bool{"I": true, "II": true, "III": true, "IV": true, "VIII": true, "IX": true, "XII": true}

var dedupeSuffixes = map[bool][]string{
	true:  {"(tiếp theo)", "(mở rộng)", "(ôn tập)"},
	false: {"(continued)", "(extended)", "(review)"},
}

// normalizeTitle strips numbering and label prefixes and fixes casing.
func normalizeTitle(title string, appendix bool) string {
	t := strings.Join(strings.Fields(title), " ")
	t = strings.TrimSpace(strings.TrimLeft(t, "#"))
	if t == "" {
		return title
	}

	if appendix {
		t = appendixTitle(t)
	} else {
		t = stripNumbering(t)
		folded := foldAligned(t)
		if loc := reTopicPrefix.FindStringIndex(folded); loc != nil {
			rest := string([]rune(t)[runeLen(folded[:loc[1]]):])
			if strings.TrimSpace(rest) != "" {
				t = rest
			}
		}
	}

	if runeLen(t) >= 8 {
		if ratio, letters := upperRatio(t); letters >= 4 && ratio >= 0.8 {
			t = sentenceCase(t)
		}
	}
	t = strings.TrimRight(strings.TrimSpace(t), ":;,-–— ")
	if t == "" {
		return strings.TrimSpace(title)
	}
	return t
}

// stripNumbering removes a unit label or bare index at the start. The
// stripped form is discarded when fewer than two content words remain.
func stripNumbering(t string) string {
	stripped := t
	if m, ok := matchLabel(t, foldAligned(t)); ok && m.unit != "appendix" {
		stripped = m.title
	} else if loc := reLeadingIndex.FindStringIndex(t); loc != nil {
		stripped = t[loc[1]:]
	}
	stripped = strings.TrimSpace(strings.TrimLeft(stripped, ":.-–—) "))
	if len(meaningfulTokens(stripped)) < 2 {
		return t
	}
	return stripped
}

// appendixTitle rewrites "Appendix A: X" / "Phụ lục 1: X" as "Appendix — X".
func appendixTitle(t string) string {
	folded := foldAligned(t)
	word := "Appendix"
	switch {
	case hasWordPrefix(folded, "phu luc"):
		word = "Phụ lục"
	case hasWordPrefix(folded, "appendix"), hasWordPrefix(folded, "annex"):
	case hasVietnameseMarks(t):
		word = "Phụ lục"
	}
	rest := ""
	if m, ok := matchLabel(t, folded); ok && m.unit == "appendix" {
		rest = m.title
	} else {
		for _, p := range []string{"phu luc", "appendix", "annex"} {
			if hasWordPrefix(folded, p) {
				rest = string([]rune(t)[runeLen(p):])
				break
			}
		}
		if rest == "" && !hasWordPrefix(folded, "phu luc") && !hasWordPrefix(folded, "appendix") && !hasWordPrefix(folded, "annex") {
			rest = t
		}
	}
	rest = strings.TrimSpace(strings.TrimLeft(rest, ":.-–—) "))
	if rest == "" {
		return t
	}
	return word + " — " + rest
}

// sentenceCase lowercases an all-caps title, keeping acronyms, roman
// numerals and words with digits as they are.
func sentenceCase(t string) string {
	words := strings.Fields(t)
	for i, w := range words {
		if keepUpper(w) {
			continue
		}
		words[i] = strings.ToLower(w)
	}
	return capitalize(strings.Join(words, " "))
}

func keepUpper(w string) bool {
	core := strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	if core == "" {
		return false
	}
	if strings.ContainsAny(core, "0123456789") {
		return true
	}
	if knownAcronyms[core] {
		return true
	}
	if romanNumerals[core] {
		return true
	}
	if runeLen(core) > 4 {
		return false
	}
	return !strings.ContainsAny(foldAligned(core), "aeiouy")
}

// titleKey is the case- and whitespace-insensitive identity of a title.
func titleKey(t string) string {
	return strings.ToLower(strings.Join(strings.Fields(t), " "))
}

// dedupeTitles makes every title unique. On collision it tries a body
// keyword missing from the title, then a short suffix, then a number.
func dedupeTitles(topics []Topic) []Topic {
	seen := make(map[string]bool, len(topics))
	for i := range topics {
		t := &topics[i]
		if !seen[titleKey(t.Title)] {
			seen[titleKey(t.Title)] = true
			continue
		}
		t.Title = disambiguate(*t, seen)
		seen[titleKey(t.Title)] = true
	}
	return topics
}

func disambiguate(t Topic, seen map[string]bool) string {
	base := t.Title
	inTitle := tokenSet(tokenize(base))
	for _, kw := range t.Keywords {
		fresh := true
		for _, tok := range tokenize(kw) {
			if _, ok := inTitle[fold(tok)]; ok {
				fresh = false
				break
			}
		}
		if !fresh {
			continue
		}
		cand := fmt.Sprintf("%s (%s)", base, kw)
		if !seen[titleKey(cand)] {
			return cand
		}
	}
	for _, suf := range dedupeSuffixes[hasVietnameseMarks(base)] {
		cand := base + " " + suf
		if !seen[titleKey(cand)] {
			return cand
		}
	}
	for n := 2; ; n++ {
		cand := fmt.Sprintf("%s (%d)", base, n)
		if !seen[titleKey(cand)] {
			return cand
		}
	}
}
