package chunker

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // A smaller trailing chunk is folded into the one before it.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 4
	}
	if c.MinChunk <= 0 {
		c.MinChunk = d.MinChunk
	}
	return c
}

type window struct {
	from, to int
}

// Chunk cuts a flattened document into windows of whole lines, so every
// chunk is a contiguous slice of the document text. A window closes before
// a "#" heading line once it holds MinChunk tokens, or before the line that
// would push it past ChunkSize. Size-driven breaks carry up to ChunkOverlap
// tokens of trailing lines into the next window.
func Chunk(flat doctree.Flat, cfg Config) []doctree.Chunk {
	cfg = cfg.withDefaults()
	lines := splitLongLines(flat.Lines, cfg.ChunkSize)
	tokens := make([]int, len(lines))
	for i, l := range lines {
		tokens[i] = EstimateTokens(l.Text)
	}

	var wins []window
	start := 0
	for {
		for start < len(lines) && blank(lines[start].Text) {
			start++
		}
		if start >= len(lines) {
			break
		}
		end, sum, atHeading := start, 0, false
		for end < len(lines) {
			if end > start && isHeading(lines[end].Text) && sum >= cfg.MinChunk {
				atHeading = true
				break
			}
			if end > start && sum+tokens[end] > cfg.ChunkSize {
				break
			}
			sum += tokens[end]
			end++
		}
		wins = append(wins, window{start, end})
		if end >= len(lines) {
			break
		}
		if atHeading {
			start = end
		} else {
			start = overlapStart(tokens, start, end, cfg.ChunkOverlap)
		}
	}

	if n := len(wins); n > 1 && sumTokens(tokens, wins[n-1]) < cfg.MinChunk {
		wins[n-2].to = wins[n-1].to
		wins = wins[:n-1]
	}

	chunks := make([]doctree.Chunk, 0, len(wins))
	for _, w := range wins {
		if c, ok := makeChunk(lines[w.from:w.to]); ok {
			c.Index = len(chunks)
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// Texts returns the chunk texts in order.
func Texts(chunks []doctree.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// overlapStart walks back from end over whole lines while they fit in the
// overlap budget. The result is always past start.
func overlapStart(tokens []int, start, end, overlap int) int {
	i, sum := end, 0
	for i-1 > start && sum+tokens[i-1] <= overlap {
		i--
		sum += tokens[i]
	}
	return i
}

func sumTokens(tokens []int, w window) int {
	s := 0
	for _, t := range tokens[w.from:w.to] {
		s += t
	}
	return s
}

func makeChunk(lines []doctree.Line) (doctree.Chunk, bool) {
	for len(lines) > 0 && blank(lines[len(lines)-1].Text) {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return doctree.Chunk{}, false
	}
	var c doctree.Chunk
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
		if l.Page <= 0 {
			continue
		}
		if c.PageStart == 0 || l.Page < c.PageStart {
			c.PageStart = l.Page
		}
		if l.Page > c.PageEnd {
			c.PageEnd = l.Page
		}
	}
	c.Text = strings.Join(texts, "\n")
	return c, true
}

// splitLongLines breaks any line above the target size at sentence ends,
// then at word boundaries.
func splitLongLines(lines []doctree.Line, targetTokens int) []doctree.Line {
	out := make([]doctree.Line, 0, len(lines))
	for _, l := range lines {
		if EstimateTokens(l.Text) <= targetTokens {
			out = append(out, l)
			continue
		}
		for _, part := range splitBySentences(l.Text, targetTokens) {
			out = append(out, doctree.Line{Text: part, Page: l.Page})
		}
	}
	return out
}

// splitBySentences packs sentences into parts of about targetTokens.
func splitBySentences(text string, targetTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0
	flush := func() {
		if current.Len() > 0 {
			result = append(result, current.String())
			current.Reset()
			currentTokens = 0
		}
	}

	for _, sent := range splitSentences(text) {
		sentTokens := EstimateTokens(sent)
		if sentTokens > targetTokens {
			flush()
			result = append(result, splitByWords(sent, targetTokens)...)
			continue
		}
		if currentTokens+sentTokens > targetTokens {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}
	flush()
	return result
}

func splitByWords(text string, targetTokens int) []string {
	words := strings.Fields(text)
	per := int(float64(targetTokens) / tokensPerWord)
	if per < 1 {
		per = 1
	}
	var parts []string
	for len(words) > 0 {
		n := min(per, len(words))
		parts = append(parts, strings.Join(words[:n], " "))
		words = words[n:]
	}
	return parts
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isHeading(line string) bool {
	t := strings.TrimLeft(line, "#")
	return len(t) < len(line) && strings.HasPrefix(t, " ")
}

func blank(line string) bool {
	return strings.TrimSpace(line) == ""
}
