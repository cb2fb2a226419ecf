package outline

import (
	"math"
	"strings"
)

// paragraphSegments splits a heading-less document into k groups of
// blank-line-delimited paragraphs, k = clamp(min, max, runes/3000).
// Titles come from the top keywords of each group.
func paragraphSegments(d *document) []RawSegment {
	type para struct {
		text  string
		first int // first line position
		last  int
	}
	var paras []para
	var cur []string
	start := -1
	flush := func(end int) {
		if t := strings.TrimSpace(strings.Join(cur, "\n")); t != "" {
			paras = append(paras, para{text: t, first: start, last: end})
		}
		cur, start = cur[:0], -1
	}
	for pos, l := range d.lines {
		if d.inTOC[pos] || l.Text == "" || isDivider(l.Text) {
			if len(cur) > 0 {
				flush(pos - 1)
			}
			continue
		}
		if start < 0 {
			start = pos
		}
		cur = append(cur, l.Text)
	}
	if len(cur) > 0 {
		flush(len(d.lines) - 1)
	}
	if len(paras) == 0 {
		return nil
	}

	total := 0
	for _, p := range paras {
		total += runeLen(p.text)
	}
	k := clampInt(d.opts.FallbackMinParts, d.opts.FallbackMaxParts, int(math.Round(float64(total)/3000)))
	if k > len(paras) {
		k = len(paras)
	}

	groups := make([][]para, k)
	offset := 0
	for _, p := range paras {
		g := offset * k / total
		if g >= k {
			g = k - 1
		}
		groups[g] = append(groups[g], p)
		offset += runeLen(p.text)
	}

	var segs []RawSegment
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		texts := make([]string, len(g))
		for i, p := range g {
			texts[i] = p.text
		}
		body := strings.Join(texts, "\n\n")
		title := keywordTitle(body)
		if title == "" || !saneSegment(body) {
			continue
		}
		seg := RawSegment{
			Title:       title,
			HeadingLine: firstLine(g[0].text),
			Body:        body,
			Keywords:    extractKeywords(body, d.opts.MaxKeywords),
			Kind:        KindNone,
			LineIndex:   g[0].first,
		}
		if d.chunkOf != nil {
			seg.StartChunk = intPtr(d.chunkOf[g[0].first])
			seg.EndChunk = intPtr(d.chunkOf[g[len(g)-1].last])
		}
		segs = append(segs, seg)
	}
	return segs
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
