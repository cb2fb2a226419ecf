package outline

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type tocState int

const (
	outsideTOC tocState = iota
	insideTOC
)

// TOCEntry is one parsed table-of-contents line.
type TOCEntry struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Page  int    `json:"page,omitempty"`
}

// TOCTracker is a two-state scanner that suppresses heading detection
// inside table-of-contents blocks and collects their entries.
// It is fed lines in document order, possibly across several chunks.
type TOCTracker struct {
	maxLines int

	state   tocState
	inside  int
	entries map[string]TOCEntry
	order   []string

	// lastLine is the last line recognized as part of any TOC region.
	lastLine string
	regions  int
}

// NewTOCTracker creates a tracker with the given hard line cap.
func NewTOCTracker(maxLines int) *TOCTracker {
	if maxLines <= 0 {
		maxLines = 260
	}
	return &TOCTracker{maxLines: maxLines, entries: make(map[string]TOCEntry)}
}

var tocMarkers = []string{"muc luc", "table of contents", "contents", "noi dung chinh"}

var (
	reTOCPage    = regexp.MustCompile(`^(.+?)\s*(?:[.·…_]{2,}|\s)\s*(\d{1,4})$`)
	reTOCLeaders = regexp.MustCompile(`[.·…_]{2,}`)
)

func isTOCMarker(text string) bool {
	if runeLen(text) > 40 {
		return false
	}
	folded := strings.TrimFunc(foldAligned(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, m := range tocMarkers {
		if folded == m {
			return true
		}
	}
	return false
}

// Observe feeds the next normalized line and reports whether it belongs to
// a TOC region (and so must not be considered as a heading).
func (t *TOCTracker) Observe(text string) bool {
	if t.state == outsideTOC {
		if isTOCMarker(text) {
			t.state = insideTOC
			t.inside = 0
			t.regions++
			t.lastLine = text
			return true
		}
		return false
	}

	t.inside++
	if isDivider(text) {
		t.state = outsideTOC
		t.lastLine = text
		return true
	}
	if t.inside > t.maxLines {
		t.state = outsideTOC
		return false
	}
	if text == "" {
		return true
	}

	entry, key, shaped := parseTOCEntry(text)
	if key != "" {
		if _, dup := t.entries[key]; dup {
			// The body has started: the same label is seen a second time.
			t.state = outsideTOC
			return false
		}
		if entry.Title != "" || shaped {
			t.entries[key] = entry
			t.order = append(t.order, key)
			t.lastLine = text
			return true
		}
	}
	if shaped {
		t.lastLine = text
		return true
	}
	if len(t.order) > 0 && isProse(text) {
		t.state = outsideTOC
		return false
	}
	return true
}

// Inside reports the current state.
func (t *TOCTracker) Inside() bool { return t.state == insideTOC }

// Seen reports whether at least one TOC region was entered.
func (t *TOCTracker) Seen() bool { return t.regions > 0 }

// LastLine returns the last line attributed to a TOC region.
func (t *TOCTracker) LastLine() string { return t.lastLine }

// Entries returns the parsed entries in TOC order.
func (t *TOCTracker) Entries() []TOCEntry {
	out := make([]TOCEntry, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.entries[k])
	}
	return out
}

// Title returns the TOC title recorded for the candidate's label, if any.
func (t *TOCTracker) Title(c HeadingCandidate) (string, bool) {
	key := tocKey(c.Unit, c.Index)
	if key == "" {
		return "", false
	}
	e, ok := t.entries[key]
	if !ok || e.Title == "" {
		return "", false
	}
	return e.Title, true
}

// parseTOCEntry parses "Chương 2: Title ..... 15" style lines. shaped
// reports a trailing page number after leaders or spacing.
func parseTOCEntry(text string) (TOCEntry, string, bool) {
	head, page, shaped := text, 0, false
	m := reTOCPage.FindStringSubmatch(text)
	if m != nil && !isNumeric(strings.ReplaceAll(m[1], ".", "")) && !labelHeads[foldAligned(strings.TrimSpace(m[1]))] {
		head = m[1]
		page, _ = strconv.Atoi(m[2])
		shaped = true
	}
	head = strings.TrimSpace(reTOCLeaders.ReplaceAllString(head, " "))

	if m, ok := matchLabel(head, foldAligned(head)); ok {
		key := tocKey(m.unit, m.index)
		return TOCEntry{Key: key, Title: cleanTOCTitle(m.title), Page: page}, key, shaped
	}
	if m := reBareNumeric.FindStringSubmatch(head); m != nil && shaped {
		key := tocKey("", strings.TrimSuffix(m[1], "."))
		return TOCEntry{Key: key, Title: cleanTOCTitle(m[2]), Page: page}, key, shaped
	}
	return TOCEntry{}, "", shaped
}

func cleanTOCTitle(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".·…_:-–— "))
}

// isEntryShaped reports a line ending in a page reference.
func isEntryShaped(text string) bool {
	_, _, shaped := parseTOCEntry(text)
	return shaped
}

func isProse(text string) bool {
	if runeLen(text) < 100 {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// tocKey builds the lookup key shared by TOC entries and body headings.
// Roman indices are converted so "Chương II" and "Chương 2" match.
func tocKey(unit, index string) string {
	if index == "" {
		return ""
	}
	idx := strings.ToLower(strings.TrimSuffix(index, "."))
	if n, ok := romanToInt(idx); ok {
		idx = strconv.Itoa(n)
	}
	if unit == "" {
		unit = "num"
	}
	return unit + ":" + idx
}

func romanToInt(s string) (int, bool) {
	vals := map[rune]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}
	if s == "" {
		return 0, false
	}
	total, prev := 0, 0
	r := []rune(s)
	for i := len(r) - 1; i >= 0; i-- {
		v, ok := vals[r[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total, true
}
