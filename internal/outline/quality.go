package outline

import (
	"regexp"
	"strings"
	"unicode"
)

// QualityDiagnostics explains a quality score.
type QualityDiagnostics struct {
	TotalChars        int     `json:"total_chars"`
	ExemptedChars     int     `json:"exempted_chars"`
	SymbolRatio       float64 `json:"symbol_ratio"`
	GarbledRatio      float64 `json:"garbled_ratio"`
	NonPrintableRatio float64 `json:"non_printable_ratio"`
	LetterRatio       float64 `json:"letter_ratio"`
}

// QualityReport is the readability assessment of a document text.
type QualityReport struct {
	Score       float64            `json:"score"`
	Diagnostics QualityDiagnostics `json:"diagnostics"`
	Source      string             `json:"source,omitempty"`
}

var reFence = regexp.MustCompile("(?s)```[a-zA-Z]*\n(.*?)```")

// commonPunct is ordinary prose punctuation that does not count as noise.
const commonPunct = ".,;:!?'\"()[]-–—/%…«»“”‘’&"

// AssessQuality scores text readability in [0,1]. Large fenced JSON/array
// blocks and runs of data-like lines are removed before measuring.
func AssessQuality(text string) QualityReport {
	scored, exempted := exemptDataBlocks(text)

	var total, symbols, garbled, nonPrint, letters int
	for _, r := range scored {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case unicode.IsLetter(r) || unicode.Is(unicode.Mn, r):
			letters++
		case unicode.IsDigit(r):
		case r == '\ufffd' || unicode.Is(unicode.Co, r):
			garbled++
		case unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || !unicode.IsPrint(r):
			nonPrint++
		case strings.ContainsRune(commonPunct, r):
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbols++
		}
	}
	for _, m := range mojibakeMarkers {
		garbled += strings.Count(scored, m) * 2
	}

	rep := QualityReport{
		Source: "builtin",
		Diagnostics: QualityDiagnostics{
			TotalChars:    total,
			ExemptedChars: exempted,
		},
	}
	if total == 0 {
		return rep
	}
	d := &rep.Diagnostics
	d.SymbolRatio = float64(symbols) / float64(total)
	d.GarbledRatio = clamp01(float64(garbled) / float64(total))
	d.NonPrintableRatio = float64(nonPrint) / float64(total)
	d.LetterRatio = float64(letters) / float64(total)
	rep.Score = clamp01(1 - (d.SymbolRatio*1.2 + d.GarbledRatio*2.5 + d.NonPrintableRatio*2.5))
	return rep
}

// exemptDataBlocks drops fenced JSON/array blocks of at least 200 runes and
// runs of five or more data-like lines. It returns the remaining text and
// the number of exempted non-space runes.
func exemptDataBlocks(text string) (string, int) {
	exempted := 0
	text = reFence.ReplaceAllStringFunc(text, func(block string) string {
		inner := reFence.FindStringSubmatch(block)[1]
		trimmed := strings.TrimSpace(inner)
		if runeLen(trimmed) < 200 || (!strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[")) {
			return block
		}
		exempted += nonSpaceCount(block)
		return "\n"
	})

	lines := strings.Split(text, "\n")
	keep := make([]bool, len(lines))
	for i := 0; i < len(lines); {
		if !dataLike(lines[i]) {
			keep[i] = true
			i++
			continue
		}
		j := i
		for j < len(lines) && dataLike(lines[j]) {
			j++
		}
		if j-i >= 5 {
			for k := i; k < j; k++ {
				exempted += nonSpaceCount(lines[k])
			}
		} else {
			for k := i; k < j; k++ {
				keep[k] = true
			}
		}
		i = j
	}
	var b strings.Builder
	for i, l := range lines {
		if keep[i] {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String(), exempted
}

func dataLike(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	switch t[0] {
	case '{', '}', '[', ']', '"':
		return strings.ContainsAny(t, ":,{}[]")
	}
	return false
}

func nonSpaceCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
