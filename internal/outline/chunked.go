package outline

import "strings"

// maxOverlapProbe bounds the tail searched for window overlap.
const maxOverlapProbe = 4000

// analyzeChunks builds a document directly over a chunk-window list. The
// TOC tracker persists across windows; each window is scanned for headings
// to a bounded depth. Text repeated from the previous window's tail is
// skipped so overlapping windows do not duplicate lines.
func analyzeChunks(chunks []string, opts Options, collab Collaborators) *document {
	d := &document{toc: NewTOCTracker(opts.TOCMaxLines), opts: opts}
	co := opts.classifyOptions()
	prevStart := -1

	for ci, raw := range chunks {
		text := raw
		if ci > 0 {
			text = raw[windowOverlap(chunks[ci-1], raw):]
		}
		local := SplitLines(text, collab)
		base := len(d.lines)

		if ci > 0 {
			d.lookBack(local, base, prevStart)
		}

		for pos, l := range local {
			d.lines = append(d.lines, Line{Text: l.Text, Index: base + pos})
			d.chunkOf = append(d.chunkOf, ci)
			d.chars += runeLen(l.Text)
			inside := d.toc.Observe(l.Text)
			d.inTOC = append(d.inTOC, inside)
			if inside || pos >= opts.ChunkScanDepth {
				continue
			}
			if c, ok := classifyAt(local, pos, co); ok {
				c.LineIndex = base + pos
				d.cands = append(d.cands, c)
			}
		}
		prevStart = base
	}
	return d
}

// lookBack handles a window that opens with a marker line: the subject
// title it belongs to sits at the tail of the previous window.
func (d *document) lookBack(local []Line, base, prevStart int) {
	first := -1
	for i, l := range local {
		if l.Text != "" {
			first = i
			break
		}
	}
	if first < 0 || !isMarkerLine(local[first].Text) || prevStart < 0 {
		return
	}
	if n := len(d.cands); n > 0 && d.cands[n-1].LineIndex >= prevStart {
		last := d.cands[n-1]
		if last.Kind == KindSoftSubject && last.Boundary() {
			return
		}
	}
	seen := 0
	for g := base - 1; g >= prevStart && seen < 5; g-- {
		t := d.lines[g].Text
		if t == "" {
			continue
		}
		seen++
		if d.inTOC[g] || isMarkerLine(t) {
			continue
		}
		if !isTitleShaped(t) {
			continue
		}
		if bad, _ := badHeadingCandidate(t); bad {
			return
		}
		if n := len(d.cands); n > 0 && d.cands[n-1].LineIndex >= g {
			return
		}
		d.cands = append(d.cands, HeadingCandidate{
			LineIndex: g,
			Text:      t,
			Kind:      KindSoftSubject,
			Title:     t,
			Depth:     1,
		})
		return
	}
}

// windowOverlap returns the length of the longest prefix of next that is
// also a suffix of prev.
func windowOverlap(prev, next string) int {
	if prev == "" || next == "" {
		return 0
	}
	tail := prev
	if len(tail) > maxOverlapProbe {
		tail = tail[len(tail)-maxOverlapProbe:]
	}
	probe := next
	if len(probe) > 16 {
		probe = probe[:16]
	}
	best := 0
	for off := 0; off < len(tail); {
		i := strings.Index(tail[off:], probe)
		if i < 0 {
			break
		}
		j := off + i
		suffix := tail[j:]
		if len(suffix) <= len(next) && strings.HasPrefix(next, suffix) && len(suffix) > best {
			best = len(suffix)
			break
		}
		off = j + 1
	}
	// Only whole-line overlaps are skipped.
	if best > 0 && best < len(next) && next[best-1] != '\n' && next[best] != '\n' {
		if nl := strings.LastIndexByte(next[:best], '\n'); nl >= 0 {
			return nl + 1
		}
		return 0
	}
	return best
}
