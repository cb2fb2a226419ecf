package doctree

import (
	"strings"
	"testing"
)

func TestBuilder_NestsByLevel(t *testing.T) {
	b := NewBuilder("Physics")
	b.Text("Preface text.")
	b.Heading(1, "Chương 1", 0)
	b.Text("Intro.")
	b.Heading(2, "Bài 1", 0)
	b.Text("Lesson one.")
	b.Text("More of lesson one.")
	b.Heading(2, "Bài 2", 0)
	b.Heading(1, "Chương 2", 0)
	tree := b.Tree()

	if len(tree.Children) != 3 {
		t.Fatalf("expected preface + 2 chapters, got %d", len(tree.Children))
	}
	if tree.Children[0].Text != "Preface text." || tree.Children[0].Title != "" {
		t.Errorf("expected untitled preface first, got %+v", tree.Children[0])
	}
	ch1 := tree.Children[1]
	if ch1.Title != "Chương 1" || ch1.Text != "Intro." {
		t.Errorf("unexpected chapter node %+v", ch1)
	}
	if len(ch1.Children) != 2 {
		t.Fatalf("expected 2 lessons under chapter 1, got %d", len(ch1.Children))
	}
	if ch1.Children[0].Text != "Lesson one.\n\nMore of lesson one." {
		t.Errorf("expected joined paragraphs, got %q", ch1.Children[0].Text)
	}
	if tree.Children[2].Title != "Chương 2" {
		t.Errorf("expected chapter 2 at top level, got %q", tree.Children[2].Title)
	}
}

func TestBuilder_LeafPages(t *testing.T) {
	b := NewBuilder("Scan")
	b.Leaf("page one", 1)
	b.Leaf("   ", 2)
	b.Leaf("page three", 3)
	tree := b.Tree()
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 leaves, got %d", len(tree.Children))
	}
	if tree.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", tree.Pages)
	}
}

func TestFlatten_HeadingsAndPages(t *testing.T) {
	tree := &DocTree{
		Title: "Doc",
		Children: []*DocNode{
			{Title: "Chương 1", Level: 1, Page: 2, Text: "Alpha line\nBeta line", Children: []*DocNode{
				{Title: "Bài 1", Level: 2, Text: "Gamma"},
			}},
			{Text: "Delta", Page: 4},
		},
	}
	flat := Flatten(tree)

	want := strings.Join([]string{
		"# Chương 1", "", "Alpha line", "Beta line", "", "## Bài 1", "", "Gamma", "", "Delta",
	}, "\n")
	if flat.Text != want {
		t.Fatalf("unexpected flat text:\n%s", flat.Text)
	}
	if len(flat.Lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(flat.Lines))
	}
	if flat.Lines[7].Page != 2 {
		t.Errorf("expected inherited page 2 for the lesson body, got %d", flat.Lines[7].Page)
	}
	if flat.Lines[9].Page != 4 {
		t.Errorf("expected page 4 for the last block, got %d", flat.Lines[9].Page)
	}
	if flat.Pages != 4 {
		t.Errorf("expected 4 pages, got %d", flat.Pages)
	}
}

func TestFlatten_Empty(t *testing.T) {
	flat := Flatten(&DocTree{Title: "Empty"})
	if flat.Text != "" || len(flat.Lines) != 0 {
		t.Errorf("expected empty flat text, got %q", flat.Text)
	}
}
