package outline

import (
	"strings"
	"unicode"
)

// Strategy names reported in Result.Strategy.
const (
	StrategyHeading   = "heading"
	StrategyLesson    = "lesson"
	StrategyChapter   = "chapter"
	StrategyParagraph = "paragraph_fallback"
)

// RawSegment is one topic segment before normalization.
type RawSegment struct {
	Title       string
	Label       string
	HeadingLine string
	Body        string
	Kind        HeadingKind
	LineIndex   int
	StartChunk  *int
	EndChunk    *int
	Keywords    []string
	Appendix    bool
	TextOnly    bool
}

// document is the analyzed form of the input shared by all strategies.
type document struct {
	lines []Line
	// chunkOf maps a line to its chunk; nil when segmenting full text.
	chunkOf []int
	inTOC   []bool
	cands   []HeadingCandidate
	toc     *TOCTracker
	chars   int
	pages   int
	opts    Options
}

// analyzeText classifies every line of a full text.
func analyzeText(lines []Line, opts Options) *document {
	d := &document{
		lines: lines,
		inTOC: make([]bool, len(lines)),
		toc:   NewTOCTracker(opts.TOCMaxLines),
		opts:  opts,
	}
	co := opts.classifyOptions()
	for pos, l := range lines {
		d.chars += runeLen(l.Text)
		if d.toc.Observe(l.Text) {
			d.inTOC[pos] = true
			continue
		}
		if c, ok := classifyAt(lines, pos, co); ok {
			d.cands = append(d.cands, c)
		}
	}
	return d
}

// classifyAt classifies one line, applies the bad-candidate veto and
// reports whether the result is worth keeping.
func classifyAt(lines []Line, pos int, co ClassifyOptions) (HeadingCandidate, bool) {
	if isMarkerLine(lines[pos].Text) {
		return HeadingCandidate{}, false
	}
	c := ClassifyLine(lines, pos, co)
	if c.Kind == KindNone {
		return c, c.Rejected
	}
	if bad, reason := badHeadingCandidate(c.Text); bad {
		c.Rejected, c.RejectReason = true, reason
	}
	return c, true
}

func (d *document) boundaries(keep func(HeadingCandidate) bool) []HeadingCandidate {
	var out []HeadingCandidate
	for _, c := range d.cands {
		if c.Boundary() && keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (d *document) countKind(k HeadingKind) int {
	n := 0
	for _, c := range d.cands {
		if c.Boundary() && c.Kind == k {
			n++
		}
	}
	return n
}

// headingSegments is the default strategy: every accepted heading opens a
// segment. A dense cluster of boundaries is a leaked TOC and yields nothing.
func headingSegments(d *document) []RawSegment {
	bounds := d.boundaries(func(HeadingCandidate) bool { return true })
	if tocLeak(bounds, d.opts.TOCLeakBoundary, d.opts.TOCLeakLineSpan) {
		return nil
	}
	return d.build(bounds, false)
}

func tocLeak(bounds []HeadingCandidate, n, span int) bool {
	for i := 0; i+n-1 < len(bounds); i++ {
		if bounds[i+n-1].LineIndex-bounds[i].LineIndex < span {
			return true
		}
	}
	return false
}

func lessonSegments(d *document) []RawSegment {
	bounds := d.boundaries(func(c HeadingCandidate) bool { return c.Kind == KindLesson })
	return d.build(bounds, false)
}

func isChapterLevel(c HeadingCandidate) bool {
	switch {
	case c.Kind == KindChapter, c.Kind == KindAppendix:
		return true
	case c.Kind == KindTopicLabel && c.Unit == "section" && c.Depth == 1:
		return true
	case c.Kind == KindTopicLabel && c.Markdown && c.Depth == 1:
		return true
	}
	return false
}

// chapterSegments keeps only chapter-level headings. Without any, chapters
// are inferred from the first "K.1" subsection of each major number K.
func chapterSegments(d *document) []RawSegment {
	if bounds := d.boundaries(isChapterLevel); len(bounds) > 0 {
		return d.build(bounds, false)
	}
	var inferred []HeadingCandidate
	seen := make(map[string]bool)
	for _, c := range d.cands {
		if !c.Boundary() || c.Depth < 2 {
			continue
		}
		parts := strings.Split(c.Index, ".")
		if len(parts) < 2 || parts[1] != "1" || !isNumeric(parts[0]) || seen[parts[0]] {
			continue
		}
		seen[parts[0]] = true
		ch := c
		ch.Kind = KindChapter
		ch.Unit = "chapter"
		ch.Index = parts[0]
		ch.Depth = 1
		if t, ok := d.toc.Title(ch); ok {
			ch.Title = t
		} else if t, ok := d.toc.Title(HeadingCandidate{Index: parts[0]}); ok {
			ch.Title = t
		}
		// The boundary line is a subsection, not a chapter label.
		ch.Unit = ""
		inferred = append(inferred, ch)
	}
	return d.build(inferred, true)
}

// build turns boundaries into segments. Lines before the first boundary are
// prepended to the first segment; headings with empty bodies fold into the
// next segment. With keepHeading the boundary line stays in the body.
func (d *document) build(bounds []HeadingCandidate, keepHeading bool) []RawSegment {
	if len(bounds) == 0 {
		return nil
	}
	var preamble []string
	for pos := 0; pos < bounds[0].LineIndex; pos++ {
		if !d.inTOC[pos] && !isDivider(d.lines[pos].Text) {
			preamble = append(preamble, d.lines[pos].Text)
		}
	}

	segs := make([]RawSegment, 0, len(bounds))
	var carry []string
	for i, b := range bounds {
		end := len(d.lines)
		if i+1 < len(bounds) {
			end = bounds[i+1].LineIndex
		}
		title, consumed := d.resolveTitle(b, end)
		var body []string
		if keepHeading {
			body = append(body, b.Text)
		}
		for pos := b.LineIndex + 1; pos < end; pos++ {
			if pos == consumed || d.inTOC[pos] || isDivider(d.lines[pos].Text) {
				continue
			}
			body = append(body, d.lines[pos].Text)
		}
		if i == 0 && len(preamble) > 0 {
			body = append(append([]string{}, preamble...), body...)
		}
		if len(carry) > 0 {
			body = append(append(carry, ""), body...)
			carry = nil
		}
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text == "" {
			carry = append(carry, b.Text)
			continue
		}
		seg := RawSegment{
			Title:       title,
			Label:       labelOf(b),
			HeadingLine: b.Text,
			Body:        text,
			Kind:        b.Kind,
			LineIndex:   b.LineIndex,
			Appendix:    b.Kind == KindAppendix,
		}
		if d.chunkOf != nil {
			seg.StartChunk = intPtr(d.chunkOf[b.LineIndex])
			seg.EndChunk = intPtr(d.chunkOf[end-1])
		}
		segs = append(segs, seg)
	}

	out := segs[:0]
	for _, s := range segs {
		if saneSegment(s.Body) {
			out = append(out, s)
		}
	}
	return out
}

// resolveTitle prefers the TOC title for the label, then the remainder of
// the heading line, then the next line for label-only headings. consumed
// is the position of a next line used as title, or -1.
func (d *document) resolveTitle(b HeadingCandidate, end int) (string, int) {
	if t, ok := d.toc.Title(b); ok {
		if b.Title == "" {
			if next := d.nextTitleLine(b.LineIndex, end); next >= 0 && sameTitle(d.lines[next].Text, t) {
				return t, next
			}
		}
		return t, -1
	}
	if strings.TrimSpace(b.Title) != "" {
		return b.Title, -1
	}
	if next := d.nextTitleLine(b.LineIndex, end); next >= 0 {
		return d.lines[next].Text, next
	}
	return b.Text, -1
}

// nextTitleLine finds a title-shaped line right after a label-only heading.
func (d *document) nextTitleLine(pos, end int) int {
	seen := 0
	for j := pos + 1; j < end && seen < 2; j++ {
		t := d.lines[j].Text
		if t == "" {
			continue
		}
		seen++
		if d.inTOC[j] || isMarkerLine(t) || !isTitleShaped(t) || runeLen(t) > 100 {
			return -1
		}
		if bad, _ := badHeadingCandidate(t); bad {
			return -1
		}
		return j
	}
	return -1
}

func sameTitle(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}

// labelOf returns the unit label of a heading ("Chương 1"), if any.
func labelOf(c HeadingCandidate) string {
	if c.Unit == "" {
		return ""
	}
	text := c.Text
	if c.Title != "" && strings.HasSuffix(text, c.Title) {
		text = text[:len(text)-len(c.Title)]
	}
	return strings.TrimRight(strings.TrimSpace(text), ":.-–—) ")
}

// saneSegment drops segments that carry no readable content: fewer than
// five content words or mostly non-letter runes.
func saneSegment(body string) bool {
	if len(meaningfulTokens(body)) < 5 {
		return false
	}
	letters, total := 0, 0
	for _, r := range body {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
			letters++
		}
	}
	return total > 0 && float64(letters)/float64(total) >= 0.5
}
