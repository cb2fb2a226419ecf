package parser

import (
	"strings"
	"testing"
)

func TestTextParser_ParagraphsAndBlankRuns(t *testing.T) {
	input := "Chương 1\nCơ học\n\n\n   \nVận tốc và gia tốc.\n\nBài tập cuối chương."
	tree, err := (&TextParser{}).Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", tree.Title)
	}
	want := []string{"Chương 1\nCơ học", "Vận tốc và gia tốc.", "Bài tập cuối chương."}
	if len(tree.Children) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(tree.Children))
	}
	for i, w := range want {
		if tree.Children[i].Text != w {
			t.Errorf("child[%d]: expected %q, got %q", i, w, tree.Children[i].Text)
		}
		if tree.Children[i].Page != 0 {
			t.Errorf("child[%d]: expected no page without form feeds, got %d", i, tree.Children[i].Page)
		}
	}
}

func TestTextParser_FormFeedPages(t *testing.T) {
	input := "Trang một.\n\fTrang hai.\n\f\fTrang bốn."
	tree, err := (&TextParser{}).Parse(strings.NewReader(input), "scan.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 4}
	if len(tree.Children) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(tree.Children))
	}
	for i, p := range want {
		if tree.Children[i].Page != p {
			t.Errorf("child[%d]: expected page %d, got %d", i, p, tree.Children[i].Page)
		}
	}
	if tree.Pages != 4 {
		t.Errorf("expected 4 pages, got %d", tree.Pages)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	tree, err := (&TextParser{}).Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(tree.Children))
	}
}
