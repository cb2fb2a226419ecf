package outline

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// chunkIndex is the concatenation of all chunk texts with cumulative
// offsets, used to map byte offsets back to chunk indices.
type chunkIndex struct {
	text    string
	lower   string
	lowerAt []int // byte offset in text for each byte offset in lower
	offsets []int
}

func newChunkIndex(chunks []string) *chunkIndex {
	ci := &chunkIndex{offsets: make([]int, len(chunks))}
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteByte('\n')
		}
		ci.offsets[i] = b.Len()
		b.WriteString(norm.NFC.String(c))
	}
	ci.text = b.String()
	ci.lower, ci.lowerAt = lowerWithMap(ci.text)
	return ci
}

// lowerWithMap lowercases s and records, for every byte of the result, the
// byte offset of the rune it came from.
func lowerWithMap(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	at := make([]int, 0, len(s)+1)
	for i, r := range s {
		n := b.Len()
		b.WriteRune(unicode.ToLower(r))
		for k := n; k < b.Len(); k++ {
			at = append(at, i)
		}
	}
	at = append(at, len(s))
	return b.String(), at
}

// chunkAt maps a byte offset to its chunk.
func (ci *chunkIndex) chunkAt(off int) int {
	i := sort.Search(len(ci.offsets), func(i int) bool { return ci.offsets[i] > off }) - 1
	return clampInt(0, len(ci.offsets)-1, i)
}

// find locates needle at or after from: exact, then case-insensitive, then
// with flexible whitespace. Matches must end on a word boundary so that
// "Chương 1" does not match "Chương 10". It returns the start and end.
func (ci *chunkIndex) find(needle string, from int) (int, int, bool) {
	needle = strings.TrimSpace(needle)
	if needle == "" || from >= len(ci.text) {
		return 0, 0, false
	}
	if s, ok := indexBounded(ci.text, needle, from); ok {
		return s, s + len(needle), true
	}
	lowerFrom := sort.SearchInts(ci.lowerAt, from)
	if s, ok := indexBounded(ci.lower, strings.ToLower(needle), lowerFrom); ok {
		e := s + len(strings.ToLower(needle))
		return ci.lowerAt[s], ci.lowerAt[min(e, len(ci.lowerAt)-1)], true
	}
	fields := strings.Fields(needle)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	re, err := regexp.Compile(`(?i)` + strings.Join(fields, `\s+`))
	if err != nil {
		return 0, 0, false
	}
	for off := from; off < len(ci.text); {
		loc := re.FindStringIndex(ci.text[off:])
		if loc == nil {
			break
		}
		s, e := off+loc[0], off+loc[1]
		if boundaryAfter(ci.text, e) {
			return s, e, true
		}
		off = s + 1
	}
	return 0, 0, false
}

func indexBounded(hay, needle string, from int) (int, bool) {
	for off := from; off <= len(hay)-len(needle); {
		i := strings.Index(hay[off:], needle)
		if i < 0 {
			return 0, false
		}
		s := off + i
		if boundaryAfter(hay, s+len(needle)) {
			return s, true
		}
		off = s + 1
	}
	return 0, false
}

func boundaryAfter(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// searchStart returns the offset anchoring must begin after: the end of the
// TOC region, or else the first occurrence of the first heading that is not
// a TOC-shaped entry.
func (ci *chunkIndex) searchStart(tocLast string, segs []RawSegment) int {
	if tocLast != "" {
		if _, e, ok := ci.find(tocLast, 0); ok {
			return e
		}
	}
	for _, s := range segs {
		for from := 0; ; {
			st, e, ok := ci.find(s.HeadingLine, from)
			if !ok {
				break
			}
			if !isEntryShaped(lineAt(ci.text, st)) {
				return st
			}
			from = e
		}
	}
	return 0
}

func lineAt(s string, off int) string {
	start := strings.LastIndexByte(s[:off], '\n') + 1
	end := strings.IndexByte(s[off:], '\n')
	if end < 0 {
		return strings.TrimSpace(s[start:])
	}
	return strings.TrimSpace(s[start : off+end])
}

// anchorSegments assigns chunk ranges to full-text segments by locating
// their heading lines in the chunk list. The search cursor only moves
// forward. Segments whose heading cannot be found keep a nil range and are
// marked text-only.
func anchorSegments(segs []RawSegment, chunks []string, tocLast string) []RawSegment {
	if len(chunks) == 0 || len(segs) == 0 {
		return segs
	}
	ci := newChunkIndex(chunks)
	cursor := ci.searchStart(tocLast, segs)

	anchors := make([]int, len(segs))
	for i := range segs {
		anchors[i] = -1
		s, e, ok := ci.find(segs[i].HeadingLine, cursor)
		if !ok && segs[i].Title != segs[i].HeadingLine {
			s, e, ok = ci.find(segs[i].Title, cursor)
		}
		if !ok {
			continue
		}
		anchors[i] = s
		cursor = e
	}

	out := make([]RawSegment, len(segs))
	copy(out, segs)
	last := len(chunks) - 1
	for i := range out {
		if anchors[i] < 0 {
			out[i].StartChunk, out[i].EndChunk = nil, nil
			out[i].TextOnly = true
			continue
		}
		start := ci.chunkAt(anchors[i])
		end := last
		for j := i + 1; j < len(out); j++ {
			if anchors[j] >= 0 {
				end = ci.chunkAt(max(anchors[j]-1, anchors[i]))
				break
			}
		}
		if end < start {
			end = start
		}
		out[i].StartChunk, out[i].EndChunk = intPtr(start), intPtr(end)
		out[i].TextOnly = false
	}
	return out
}
