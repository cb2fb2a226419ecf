package outline

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords holds function words for English and Vietnamese, lowercase.
// Vietnamese entries keep their diacritics: folding them would collide with
// content syllables ("có" and "cơ" both fold to "co").
var stopwords = buildStopwords(
	// English
	"the", "and", "for", "with", "from", "that", "this", "these", "those", "are", "was",
	"were", "been", "being", "have", "has", "had", "not", "but", "its", "into", "onto",
	"than", "then", "there", "their", "they", "them", "which", "what", "when", "where",
	"who", "why", "how", "will", "would", "can", "could", "should", "may", "might", "must",
	"each", "such", "also", "only", "other", "some", "any", "all", "one", "two", "our",
	"your", "his", "her", "she", "him", "you", "about", "over", "under", "between", "more",
	"most", "very", "use", "used", "using", "is", "of", "to", "in", "on", "at", "by", "as",
	"an", "or", "be", "it", "we", "if", "so", "no", "do", "does", "a",
	// Vietnamese
	"và", "của", "là", "các", "những", "một", "cho", "trong", "với", "được", "này",
	"khi", "thì", "để", "từ", "đến", "về", "có", "không", "như", "theo", "tại", "do",
	"cũng", "sẽ", "đã", "đang", "ra", "vào", "lên", "xuống", "nên", "nếu", "mà", "hay",
	"hoặc", "bởi", "vì", "sau", "trước", "trên", "dưới", "giữa", "mỗi", "nhiều", "ít",
	"rất", "qua", "lại", "còn", "chỉ", "thường", "điều", "việc", "người", "ta", "chúng",
	"mình", "ấy", "kia", "nó", "họ", "em", "anh", "tôi", "bằng", "gì", "nào", "sao",
	"thế", "vậy", "nữa", "rồi", "vẫn", "đều", "từng", "lúc", "lần", "phần", "cái",
	"ở", "hơn", "nhất", "đó", "đây", "nhau", "cả", "cùng",
)

func buildStopwords(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases s and strips diacritics ("Chương" -> "chuong").
func fold(s string) string {
	s = strings.ToLower(s)
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case 'đ', 'Đ':
			return 'd'
		}
		return r
	}, out)
}

func isStopword(tok string) bool {
	_, ok := stopwords[strings.ToLower(tok)]
	return ok
}

// tokenize splits s into lowercase word tokens (letters and digits).
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})
}

// meaningfulTokens drops stopwords, pure numbers and single-rune tokens.
func meaningfulTokens(s string) []string {
	var out []string
	for _, t := range tokenize(s) {
		if utf8.RuneCountInString(t) < 2 || isNumeric(t) || isStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[fold(t)] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateRunes cuts s to at most n runes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// upperRatio returns the share of uppercase letters and the letter count.
func upperRatio(s string) (float64, int) {
	letters, upper := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0, 0
	}
	return float64(upper) / float64(letters), letters
}

// hasWordPrefix reports whether lower starts with word followed by a
// non-letter (or the end of the string).
func hasWordPrefix(lower, word string) bool {
	if !strings.HasPrefix(lower, word) {
		return false
	}
	rest := lower[len(word):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r)
}

// hasVietnameseMarks reports whether s carries Vietnamese-specific letters
// or tone marks.
func hasVietnameseMarks(s string) bool {
	for _, r := range s {
		if r < 0x80 {
			continue
		}
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
			return true
		}
	}
	return false
}

// vietnameseText reports whether a sizable share of the tokens in s carry
// Vietnamese letters or tone marks. A stray loanword does not count.
func vietnameseText(s string) bool {
	toks := tokenize(s)
	marked := 0
	for _, t := range toks {
		if hasVietnameseMarks(t) {
			marked++
		}
	}
	return marked >= 3 && float64(marked) >= 0.3*float64(len(toks))
}

func clampInt(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// splitParagraphs splits on blank lines and trims each block.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	var cur []string
	flush := func() {
		p := strings.TrimSpace(strings.Join(cur, "\n"))
		if p != "" {
			out = append(out, p)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

// firstSentences returns leading sentences of text up to max runes.
func firstSentences(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if runeLen(text) <= max {
		return text
	}
	cut := truncateRunes(text, max)
	if i := strings.LastIndexAny(cut, ".!?"); i > len(cut)/3 {
		return cut[:i+1]
	}
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
