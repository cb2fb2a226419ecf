package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func flatOf(lines ...string) doctree.Flat {
	f := doctree.Flat{Text: strings.Join(lines, "\n")}
	for _, l := range lines {
		f.Lines = append(f.Lines, doctree.Line{Text: l})
	}
	return f
}

func paragraph(i, words int) string {
	return strings.TrimSpace(strings.Repeat(fmt.Sprintf("w%d ", i), words))
}

func TestChunk_SmallDocumentFitsOneChunk(t *testing.T) {
	flat := flatOf("# Chương 1", "", paragraph(0, 200))
	chunks := Chunk(flat, Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 50})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
	if chunks[0].Text != flat.Text {
		t.Errorf("expected the whole text in one chunk")
	}
}

func TestChunk_SizeBreaksCarryOverlap(t *testing.T) {
	var lines []string
	for i := 0; i < 6; i++ {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, paragraph(i, 50))
	}
	flat := flatOf(lines...)
	chunks := Chunk(flat, Config{ChunkSize: 200, ChunkOverlap: 70, MinChunk: 10})

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if !strings.Contains(flat.Text, c.Text) {
			t.Errorf("chunk %d is not a slice of the document text", i)
		}
		if tokens := EstimateTokens(c.Text); tokens > 200 {
			t.Errorf("chunk %d: %d tokens exceeds target", i, tokens)
		}
	}
	if !strings.HasPrefix(chunks[1].Text, paragraph(2, 50)) {
		t.Error("expected chunk 1 to repeat the last paragraph of chunk 0")
	}
	if !strings.HasPrefix(chunks[2].Text, paragraph(4, 50)) {
		t.Error("expected chunk 2 to repeat the last paragraph of chunk 1")
	}
}

func TestChunk_BreaksBeforeHeadingsWithoutOverlap(t *testing.T) {
	flat := flatOf("# Chương 1", "", paragraph(1, 120), "", "# Chương 2", "", paragraph(2, 120))
	chunks := Chunk(flat, Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 50})

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[1].Text, "# Chương 2") {
		t.Errorf("expected second chunk to open at the heading, got %q", chunks[1].Text[:20])
	}
	if strings.Contains(chunks[1].Text, "w1") {
		t.Error("expected no overlap across a heading break")
	}
}

func TestChunk_SmallHeadingSectionsStayTogether(t *testing.T) {
	flat := flatOf("# A", "short", "# B", "short", "# C", "short")
	chunks := Chunk(flat, Config{ChunkSize: 1500, MinChunk: 50})
	if len(chunks) != 1 {
		t.Errorf("expected headings below MinChunk not to split, got %d chunks", len(chunks))
	}
}

func TestChunk_SmallTailFoldsIntoPrevious(t *testing.T) {
	flat := flatOf(paragraph(0, 140), "", paragraph(1, 5))
	chunks := Chunk(flat, Config{ChunkSize: 190, ChunkOverlap: 1, MinChunk: 20})
	if len(chunks) != 1 {
		t.Fatalf("expected tail folded into 1 chunk, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, paragraph(1, 5)) {
		t.Error("expected the tail text kept")
	}
}

func TestChunk_LongLineIsSplit(t *testing.T) {
	flat := flatOf(strings.TrimSpace(strings.Repeat("từ ", 1000)))
	chunks := Chunk(flat, Config{ChunkSize: 200, ChunkOverlap: 20, MinChunk: 10})
	if len(chunks) != 7 {
		t.Fatalf("expected 7 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if tokens := EstimateTokens(c.Text); tokens > 200 {
			t.Errorf("chunk %d: %d tokens exceeds target", i, tokens)
		}
	}
}

func TestChunk_PageRanges(t *testing.T) {
	flat := doctree.Flat{Lines: []doctree.Line{
		{Text: paragraph(0, 100), Page: 3},
		{Text: "", Page: 3},
		{Text: paragraph(1, 100), Page: 4},
		{Text: "", Page: 0},
		{Text: paragraph(2, 100), Page: 6},
	}}
	chunks := Chunk(flat, Config{ChunkSize: 280, ChunkOverlap: 1, MinChunk: 10})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].PageStart != 3 || chunks[0].PageEnd != 4 {
		t.Errorf("chunk 0: expected pages 3-4, got %d-%d", chunks[0].PageStart, chunks[0].PageEnd)
	}
	if chunks[1].PageStart != 6 || chunks[1].PageEnd != 6 {
		t.Errorf("chunk 1: expected page 6, got %d-%d", chunks[1].PageStart, chunks[1].PageEnd)
	}
}

func TestChunk_EmptyAndDefaults(t *testing.T) {
	if chunks := Chunk(doctree.Flat{}, DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
	if chunks := Chunk(flatOf("", "   ", ""), Config{}); len(chunks) != 0 {
		t.Errorf("expected blank lines to produce no chunks, got %d", len(chunks))
	}
	if chunks := Chunk(flatOf(paragraph(0, 200)), Config{}); len(chunks) != 1 {
		t.Errorf("expected zero config to fall back to defaults, got %d chunks", len(chunks))
	}
}

func TestTexts(t *testing.T) {
	got := Texts([]doctree.Chunk{{Text: "a"}, {Text: "b"}})
	if strings.Join(got, ",") != "a,b" {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"x", 1},
		{"one two three", 3},
		{strings.Repeat("w ", 100), 133},
		{strings.Repeat("漢", 40), 10},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}
