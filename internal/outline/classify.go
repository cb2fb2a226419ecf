package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// HeadingKind classifies a line.
type HeadingKind string

const (
	KindChapter     HeadingKind = "chapter"
	KindLesson      HeadingKind = "lesson"
	KindTopicLabel  HeadingKind = "topic_label"
	KindSoftSubject HeadingKind = "soft_subject"
	KindAppendix    HeadingKind = "appendix"
	KindNone        HeadingKind = "none"
)

// Reject reasons.
const (
	ReasonQuestionItem = "question_item"
	ReasonAuxiliary    = "auxiliary_section"
	ReasonTooDeep      = "numbering_too_deep"
	ReasonTooShort     = "too_short"
	ReasonTooLong      = "too_long"
	ReasonURL          = "url"
	ReasonTableRow     = "table_row"
	ReasonEquation     = "equation"
	ReasonDefinition   = "definition"
	ReasonUIMarker     = "ui_marker"
)

// HeadingCandidate is the classification of one normalized line.
type HeadingCandidate struct {
	LineIndex    int
	Text         string
	Kind         HeadingKind
	Rejected     bool
	RejectReason string

	// Unit is the canonical unit word ("chapter", "lesson", "section", ...).
	Unit string
	// Index is the label index as written ("3", "II", "2.1", "A").
	Index string
	// Title is the text following the label, if any.
	Title    string
	Depth    int
	Markdown bool
}

// Boundary reports whether the candidate may open a topic.
func (c HeadingCandidate) Boundary() bool {
	return c.Kind != KindNone && !c.Rejected
}

// ClassifyOptions tunes the classifier.
type ClassifyOptions struct {
	AppendixAsBoundary bool
	MaxNumericDepth    int
}

type classifyRule struct {
	name  string
	apply func(lines []Line, pos int, opts ClassifyOptions) (HeadingCandidate, bool)
}

// classifyRules run in order; the first rule that fires decides the line.
// Rejections come before acceptances and cannot be overridden.
var classifyRules = []classifyRule{
	{"question", ruleQuestion},
	{"auxiliary", ruleAuxiliary},
	{"label", ruleExplicitLabel},
	{"all_caps", ruleAllCaps},
	{"soft_subject", ruleSoftSubject},
}

// ClassifyLine classifies lines[pos]. Lookahead is used only by the
// soft-subject rule.
func ClassifyLine(lines []Line, pos int, opts ClassifyOptions) HeadingCandidate {
	if opts.MaxNumericDepth <= 0 {
		opts.MaxNumericDepth = 2
	}
	text := lines[pos].Text
	none := HeadingCandidate{LineIndex: pos, Text: text, Kind: KindNone}
	if text == "" || isDivider(text) {
		return none
	}
	for _, r := range classifyRules {
		if c, ok := r.apply(lines, pos, opts); ok {
			c.LineIndex = pos
			c.Text = text
			return c
		}
	}
	return none
}

// ---------------------------------------------------------------------------
// Rule 1: questions and exercise items
// ---------------------------------------------------------------------------

var (
	reQuestionMarker = regexp.MustCompile(`^(cau hoi|cau|question|q|bai tap trac nghiem)\s*\d+(\s*[:.)(\-–]|\s+[a-z]|$)`)
	reNumberedAsk    = regexp.MustCompile(`^\d+\s*[.)]\s+.*\?$`)
	reInlineOptions  = regexp.MustCompile(`(^|\s)a\s*[.)]\s*\S.*\sb\s*[.)]\s*\S.*\sc\s*[.)]\s*\S.*\sd\s*[.)]\s*\S`)
	reOptionLine     = regexp.MustCompile(`^[a-d]\s*[.)]\s+\S`)
)

var imperativeVerbs = []string{
	"compute", "calculate", "explain", "derive", "prove", "show that", "find", "determine",
	"solve", "evaluate", "simplify", "estimate", "write down", "describe how",
	"tính", "giải thích", "chứng minh", "chứng tỏ", "giải", "hãy", "xác định", "tìm",
	"trình bày", "so sánh", "nêu", "cho biết", "viết", "điền", "khoanh", "vẽ",
}

var imperativeExceptions = []string{"tìm hiểu", "tính chất", "giải pháp", "giải phẫu"}

func ruleQuestion(lines []Line, pos int, _ ClassifyOptions) (HeadingCandidate, bool) {
	// Heading markup does not make a question a title.
	text := strings.TrimLeft(lines[pos].Text, "#* ")
	folded := foldAligned(text)
	reject := HeadingCandidate{Kind: KindNone, Rejected: true, RejectReason: ReasonQuestionItem}
	if reQuestionMarker.MatchString(folded) || reNumberedAsk.MatchString(folded) {
		return reject, true
	}
	if reInlineOptions.MatchString(folded) || reOptionLine.MatchString(folded) {
		return reject, true
	}
	if isImperative(text) {
		return reject, true
	}
	return HeadingCandidate{}, false
}

func isImperative(text string) bool {
	lower := strings.ToLower(text)
	for _, ex := range imperativeExceptions {
		if hasWordPrefix(lower, ex) {
			return false
		}
	}
	verb := false
	for _, v := range imperativeVerbs {
		if hasWordPrefix(lower, v) {
			verb = true
			break
		}
	}
	if !verb {
		return false
	}
	// A bare verb phrase such as "Tính chất" or "Explain" may be a title;
	// instructions carry punctuation, numbers or formulas.
	if strings.HasSuffix(lower, ".") || strings.HasSuffix(lower, "?") || strings.HasSuffix(lower, ":") {
		return true
	}
	if strings.ContainsAny(lower, "0123456789=") {
		return true
	}
	return runeLen(lower) > 40
}

// ---------------------------------------------------------------------------
// Rule 2: auxiliary sections (practice, answers, worked examples)
// ---------------------------------------------------------------------------

var auxiliaryTerms = []string{
	"bai tap", "luyen tap", "cau hoi on tap", "cau hoi", "on tap", "dap an", "loi giai",
	"huong dan giai", "bai giai", "vi du", "trac nghiem", "kiem tra", "tu kiem tra",
	"practice", "exercises", "exercise", "problem set", "review questions",
	"answer key", "answers", "worked example", "worked examples", "examples",
	"example", "quiz", "self-check", "self check",
}

var reLeadingNumber = regexp.MustCompile(`^(\d+(\.\d+)*[.)]?|[ivxlcdm]+[.)])\s+`)

func ruleAuxiliary(lines []Line, pos int, opts ClassifyOptions) (HeadingCandidate, bool) {
	text := lines[pos].Text
	if runeLen(text) > 80 {
		return HeadingCandidate{}, false
	}
	folded := reLeadingNumber.ReplaceAllString(foldAligned(text), "")
	folded = strings.TrimLeft(folded, "#* ")
	for _, term := range auxiliaryTerms {
		if !hasWordPrefix(folded, term) {
			continue
		}
		return HeadingCandidate{Kind: KindNone, Rejected: true, RejectReason: ReasonAuxiliary}, true
	}
	if !opts.AppendixAsBoundary && isAppendixAux(text) {
		return HeadingCandidate{Kind: KindNone, Rejected: true, RejectReason: ReasonAuxiliary}, true
	}
	return HeadingCandidate{}, false
}

// isAppendixAux matches appendix lines that only wrap auxiliary material,
// e.g. "Phụ lục: Đáp án".
func isAppendixAux(text string) bool {
	m, ok := matchLabel(text, foldAligned(text))
	if !ok || m.unit != "appendix" {
		return false
	}
	rest := strings.TrimSpace(foldAligned(m.title))
	for _, term := range auxiliaryTerms {
		if hasWordPrefix(rest, term) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Rule 3: explicit labels ("Chương 2: ...", "2.1 ...", "# ...")
// ---------------------------------------------------------------------------

const unitWords = `chuong|chapter|phan|part|unit|bai|lesson|muc|section|tiet|chu de|topic|phu luc|appendix|annex`

var (
	reLabelWordFirst  = regexp.MustCompile(`^(` + unitWords + `)\s*(\d+(?:\.\d+)*|[ivxlcdm]+|[a-z])(\s*[:.\-–—)]\s*|\s+|$)`)
	reLabelIndexFirst = regexp.MustCompile(`^(\d+(?:\.\d+)*|[ivxlcdm]+)[.)]?\s+(` + unitWords + `)(\s*[:.\-–—]\s*|\s+|$)`)
	reBareNumeric     = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s+(\S.*)$`)
	reBareRoman       = regexp.MustCompile(`^([IVXLC]+)[.)]\s+(\S.*)$`)
	reMarkdown        = regexp.MustCompile(`^(#{1,6})\s+(\S.*)$`)
)

var unitKinds = map[string]struct {
	unit string
	kind HeadingKind
}{
	"chuong":   {"chapter", KindChapter},
	"chapter":  {"chapter", KindChapter},
	"phan":     {"part", KindChapter},
	"part":     {"part", KindChapter},
	"unit":     {"unit", KindChapter},
	"bai":      {"lesson", KindLesson},
	"lesson":   {"lesson", KindLesson},
	"muc":      {"section", KindTopicLabel},
	"section":  {"section", KindTopicLabel},
	"tiet":     {"section", KindTopicLabel},
	"chu de":   {"topic", KindTopicLabel},
	"topic":    {"topic", KindTopicLabel},
	"phu luc":  {"appendix", KindAppendix},
	"appendix": {"appendix", KindAppendix},
	"annex":    {"appendix", KindAppendix},
}

type labelMatch struct {
	unit  string
	kind  HeadingKind
	label string
	index string
	title string
	sep   string
}

// matchLabel matches a unit-word label. folded must be foldAligned(text).
func matchLabel(text, folded string) (labelMatch, bool) {
	orig := []rune(text)
	if m := reLabelWordFirst.FindStringSubmatchIndex(folded); m != nil {
		word := folded[m[2]:m[3]]
		index := folded[m[4]:m[5]]
		sep := folded[m[6]:m[7]]
		uk := unitKinds[word]
		titleStart := utf8.RuneCountInString(folded[:m[1]])
		idxStart := utf8.RuneCountInString(folded[:m[4]])
		idxEnd := utf8.RuneCountInString(folded[:m[5]])
		if !isNumeric(strings.ReplaceAll(index, ".", "")) {
			// Roman and letter indices need a space and an uppercase letter
			// ("Part A", "Chương IV"), otherwise "part of" would match.
			if idxStart == utf8.RuneCountInString(folded[:m[3]]) || idxStart >= len(orig) || !unicode.IsUpper(orig[idxStart]) {
				return labelMatch{}, false
			}
		}
		title := ""
		if titleStart < len(orig) {
			title = strings.TrimSpace(string(orig[titleStart:]))
		}
		return labelMatch{
			unit:  uk.unit,
			kind:  uk.kind,
			label: strings.TrimSpace(string(orig[:utf8.RuneCountInString(folded[:m[3]])])),
			index: string(orig[idxStart:idxEnd]),
			title: title,
			sep:   strings.TrimSpace(sep),
		}, true
	}
	if m := reLabelIndexFirst.FindStringSubmatchIndex(folded); m != nil {
		index := folded[m[2]:m[3]]
		word := folded[m[4]:m[5]]
		uk := unitKinds[word]
		titleStart := utf8.RuneCountInString(folded[:m[1]])
		if !isNumeric(strings.ReplaceAll(index, ".", "")) && !unicode.IsUpper(orig[0]) {
			return labelMatch{}, false
		}
		title := ""
		if titleStart < len(orig) {
			title = strings.TrimSpace(string(orig[titleStart:]))
		}
		return labelMatch{
			unit:  uk.unit,
			kind:  uk.kind,
			label: strings.TrimSpace(string(orig[utf8.RuneCountInString(folded[:m[4]]):utf8.RuneCountInString(folded[:m[5]])])),
			index: string(orig[:utf8.RuneCountInString(folded[:m[3]])]),
			title: title,
			sep:   strings.TrimSpace(folded[m[6]:m[7]]),
		}, true
	}
	return labelMatch{}, false
}

func numericDepth(index string) int {
	if !isNumeric(strings.ReplaceAll(index, ".", "")) {
		return 1
	}
	return strings.Count(strings.TrimSuffix(index, "."), ".") + 1
}

func ruleExplicitLabel(lines []Line, pos int, opts ClassifyOptions) (HeadingCandidate, bool) {
	text := lines[pos].Text
	if m := reMarkdown.FindStringSubmatch(text); m != nil {
		depth := len(m[1])
		inner := strings.TrimSpace(strings.TrimRight(m[2], "# "))
		c := HeadingCandidate{Kind: KindTopicLabel, Title: inner, Depth: depth, Markdown: true}
		if lm, ok := matchLabel(inner, foldAligned(inner)); ok {
			c.Kind, c.Unit, c.Index, c.Title = lm.kind, lm.unit, lm.index, lm.title
		}
		if depth > opts.MaxNumericDepth {
			c.Kind, c.Rejected, c.RejectReason = KindNone, true, ReasonTooDeep
		}
		return c, true
	}

	folded := foldAligned(text)
	if m, ok := matchLabel(text, folded); ok {
		// "Chương 3 trình bày ..." is prose that mentions a chapter.
		if m.sep == "" && m.title != "" {
			if r, _ := utf8.DecodeRuneInString(m.title); unicode.IsLower(r) {
				return HeadingCandidate{}, false
			}
		}
		if runeLen(m.title) > 120 {
			return HeadingCandidate{}, false
		}
		c := HeadingCandidate{Kind: m.kind, Unit: m.unit, Index: m.index, Title: m.title, Depth: numericDepth(m.index)}
		if c.Depth > opts.MaxNumericDepth {
			c.Kind, c.Rejected, c.RejectReason = KindNone, true, ReasonTooDeep
		}
		return c, true
	}

	if m := reBareNumeric.FindStringSubmatch(text); m != nil {
		title := m[2]
		first, _ := utf8.DecodeRuneInString(title)
		if !unicode.IsUpper(first) || runeLen(text) > 100 || strings.HasSuffix(title, ".") ||
			strings.HasSuffix(title, ",") || strings.HasSuffix(title, ";") || len(meaningfulTokens(title)) == 0 {
			return HeadingCandidate{}, false
		}
		index := strings.TrimSuffix(m[1], ".")
		c := HeadingCandidate{Kind: KindTopicLabel, Index: index, Title: strings.TrimSpace(title), Depth: numericDepth(index)}
		if c.Depth > opts.MaxNumericDepth {
			c.Kind, c.Rejected, c.RejectReason = KindNone, true, ReasonTooDeep
		}
		return c, true
	}

	if m := reBareRoman.FindStringSubmatch(text); m != nil {
		first, _ := utf8.DecodeRuneInString(m[2])
		if unicode.IsUpper(first) && runeLen(text) <= 100 && !strings.HasSuffix(m[2], ".") {
			return HeadingCandidate{Kind: KindTopicLabel, Index: m[1], Title: strings.TrimSpace(m[2]), Depth: 1}, true
		}
	}
	return HeadingCandidate{}, false
}

// ---------------------------------------------------------------------------
// Rule 4: all-caps headings
// ---------------------------------------------------------------------------

func ruleAllCaps(lines []Line, pos int, _ ClassifyOptions) (HeadingCandidate, bool) {
	text := lines[pos].Text
	n := runeLen(text)
	if n < 6 || n > 120 {
		return HeadingCandidate{}, false
	}
	ratio, letters := upperRatio(text)
	if letters < 4 || ratio < 0.8 {
		return HeadingCandidate{}, false
	}
	return HeadingCandidate{Kind: KindTopicLabel, Title: text, Depth: 1}, true
}

// ---------------------------------------------------------------------------
// Rule 5: soft subject headings followed by a marker line
// ---------------------------------------------------------------------------

var markerTags = []string{
	"low data", "it du lieu", "key idea", "key ideas", "y chinh", "y tuong chinh", "key concept",
	"key concepts", "concept", "khai niem chinh", "khai niem", "tom tat", "summary", "key points",
	"diem chinh", "muc tieu", "objectives", "learning objectives", "ghi nho", "remember",
}

var subjectKeywords = []string{
	"dinh luat", "nguyen ly", "khai niem", "phuong trinh", "dinh ly", "dinh nghia", "cong thuc",
	"hien tuong", "qua trinh", "ly thuyet", "phuong phap", "law", "theorem", "principle",
	"concept", "equation", "theory", "method", "model", "process",
}

// isMarkerLine reports a short tag line such as "[Key idea]" or "Ý chính:".
func isMarkerLine(text string) bool {
	if text == "" || runeLen(text) > 40 {
		return false
	}
	lead := strings.TrimLeftFunc(foldAligned(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	folded := strings.TrimRightFunc(lead, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tag := range markerTags {
		if folded == tag {
			return true
		}
		if hasWordPrefix(lead, tag) {
			rest := strings.TrimSpace(lead[len(tag):])
			if rest != "" && strings.ContainsRune(":]-)", rune(rest[0])) {
				return true
			}
		}
	}
	return false
}

func isTitleShaped(text string) bool {
	n := runeLen(text)
	if n < 4 || n > 90 || isMarkerLine(text) {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	if last == '.' || last == ',' || last == ';' || last == '?' {
		return false
	}
	first, _ := utf8.DecodeRuneInString(text)
	if unicode.IsLower(first) {
		return false
	}
	return len(meaningfulTokens(text)) >= 1
}

func hasSubjectShape(text string) bool {
	if strings.Contains(text, "(") && strings.Contains(text, ")") {
		return true
	}
	if strings.Contains(text, " - ") || strings.Contains(text, " – ") || strings.Contains(text, " — ") {
		return true
	}
	folded := " " + fold(text) + " "
	for _, kw := range subjectKeywords {
		if strings.Contains(folded, " "+kw+" ") {
			return true
		}
	}
	return false
}

func ruleSoftSubject(lines []Line, pos int, _ ClassifyOptions) (HeadingCandidate, bool) {
	text := lines[pos].Text
	if !isTitleShaped(text) || !hasSubjectShape(text) {
		return HeadingCandidate{}, false
	}
	if !markerFollows(lines, pos, 3) {
		return HeadingCandidate{}, false
	}
	return HeadingCandidate{Kind: KindSoftSubject, Title: text, Depth: 1}, true
}

// markerFollows checks the next n non-empty lines for a marker line.
func markerFollows(lines []Line, pos, n int) bool {
	seen := 0
	for j := pos + 1; j < len(lines) && seen < n; j++ {
		if lines[j].Text == "" {
			continue
		}
		seen++
		if isMarkerLine(lines[j].Text) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Bad heading candidate filter
// ---------------------------------------------------------------------------

var (
	reURL       = regexp.MustCompile(`(?i)(https?://|www\.|\.(com|vn|org|net|edu)(\b|/))`)
	reOperator  = regexp.MustCompile(`\d\s*[+*/^]\s*\d`)
	rePageLine  = regexp.MustCompile(`^(page|trang|p\.)\s*\d+(\s*/\s*\d+)?$`)
	reBareDigit = regexp.MustCompile(`^[-–—\s]*\d+[-–—\s]*$`)
)

var (
	uiPrefixes = []string{
		"click", "nhan vao", "bam vao", "trang chu", "dang nhap", "login", "log in", "sign in",
		"copyright", "all rights reserved",
	}
	uiExact = map[string]bool{
		"next": true, "back": true, "previous": true, "home": true, "menu": true, "share": true,
		"chia se": true, "download": true, "tai ve": true, "xem them": true, "read more": true,
	}
)

var labelHeads = map[string]bool{
	"topic": true, "chu de": true, "appendix": true, "phu luc": true, "annex": true,
	"section": true, "muc": true, "chapter": true, "chuong": true, "bai": true,
	"lesson": true, "part": true, "phan": true, "unit": true,
}

// badHeadingCandidate is an independent veto applied to lines a rule accepted.
func badHeadingCandidate(text string) (bool, string) {
	text = strings.TrimSpace(strings.TrimLeft(text, "#"))
	n := runeLen(text)
	letters, digits, nonSpace := 0, 0, 0
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			letters++
			nonSpace++
		case unicode.IsDigit(r):
			digits++
			nonSpace++
		case !unicode.IsSpace(r):
			nonSpace++
		}
	}
	if letters < 2 || n < 3 {
		return true, ReasonTooShort
	}
	if n > 140 {
		return true, ReasonTooLong
	}
	if reURL.MatchString(text) {
		return true, ReasonURL
	}
	if strings.Count(text, "|") >= 2 || strings.Count(text, "\t") >= 2 || float64(digits) > 0.5*float64(nonSpace) {
		return true, ReasonTableRow
	}
	if strings.ContainsAny(text, "=≤≥≠∑∫√±×÷") || reOperator.MatchString(text) {
		return true, ReasonEquation
	}
	folded := foldAligned(text)
	if rePageLine.MatchString(folded) || reBareDigit.MatchString(folded) || strings.Contains(text, "©") {
		return true, ReasonUIMarker
	}
	if uiExact[strings.TrimRight(folded, " .:>»")] {
		return true, ReasonUIMarker
	}
	for _, m := range uiPrefixes {
		if hasWordPrefix(folded, m) && n <= 40 {
			return true, ReasonUIMarker
		}
	}
	if i := strings.Index(text, ":"); i > 0 && strings.TrimSpace(text[i+1:]) != "" {
		head := strings.TrimSpace(text[:i])
		if !isLabelHead(head) {
			return true, ReasonDefinition
		}
	}
	return false, ""
}

func isLabelHead(head string) bool {
	folded := foldAligned(head)
	if labelHeads[folded] {
		return true
	}
	if _, ok := matchLabel(head, folded); ok {
		return true
	}
	if reMarkdown.MatchString(head) {
		return true
	}
	idx := strings.TrimRight(folded, ".)")
	return isNumeric(strings.ReplaceAll(idx, ".", "")) || (idx != "" && strings.Trim(idx, "ivxlc") == "")
}

// foldAligned lowercases and strips diacritics rune by rune, so rune offsets
// in the result line up with rune offsets in the input.
func foldAligned(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(foldRune(r))
	}
	return b.String()
}

func foldRune(r rune) rune {
	switch r {
	case 'đ', 'Đ':
		return 'd'
	}
	if r < utf8.RuneSelf {
		return unicode.ToLower(r)
	}
	d := norm.NFD.String(string(r))
	base, _ := utf8.DecodeRuneInString(d)
	return unicode.ToLower(base)
}
