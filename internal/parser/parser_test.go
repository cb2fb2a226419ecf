package parser

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"book.txt", false},
		{"book.MD", false},
		{"book.markdown", false},
		{"page.htm", false},
		{"scan.pdf", false},
		{"notes.docx", false},
		{"sheet.csv", true},
		{"noext", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.name, Options{})
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
		if IsSupportedExtension(tt.name) == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q): expected %v", tt.name, !tt.wantErr)
		}
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	p, err := ForFile("scan.pdf", Options{PDFFallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pp, ok := p.(*PDFParser); !ok || !pp.FallbackPdftotext {
		t.Error("expected the fallback option to reach the PDF parser")
	}
}

func TestHTMLParser_HeadingsAndBlocks(t *testing.T) {
	input := `<html><head><title>Sinh học 10</title><style>p{}</style></head><body>
<nav><a href="/">Trang chủ</a></nav>
<h1>Bài 1: Quang hợp</h1>
<p>Cây xanh   hấp thụ<br>ánh sáng.</p>
<ul><li>Lục lạp</li><li>Diệp lục</li></ul>
<h2>Pha sáng</h2>
<p>Diễn ra ở màng thylakoid.</p>
<h1>Bài 2: Hô hấp</h1>
<script>var x = 1;</script>
<p>Giải phóng năng lượng.</p>
</body></html>`
	tree, err := (&HTMLParser{}).Parse(strings.NewReader(input), "sinh10.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Sinh học 10" {
		t.Errorf("expected title from <title>, got %q", tree.Title)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(tree.Children))
	}
	l1 := tree.Children[0]
	if l1.Text != "Cây xanh hấp thụ\nánh sáng.\n\nLục lạp\n\nDiệp lục" {
		t.Errorf("unexpected lesson text %q", l1.Text)
	}
	if len(l1.Children) != 1 || l1.Children[0].Title != "Pha sáng" {
		t.Fatalf("expected the h2 nested under the first lesson")
	}
	if strings.Contains(tree.Children[1].Text, "var x") {
		t.Error("expected script content skipped")
	}
}

func TestHeadingLevel(t *testing.T) {
	for tag, want := range map[string]int{"h1": 1, "h6": 6, "h7": 0, "hr": 0, "p": 0} {
		if got := headingLevel(tag); got != want {
			t.Errorf("headingLevel(%q): expected %d, got %d", tag, want, got)
		}
	}
}
