package outline

import (
	"strings"
	"testing"
)

func linesOf(texts ...string) []Line {
	out := make([]Line, len(texts))
	for i, t := range texts {
		out[i] = Line{Text: t, Index: i}
	}
	return out
}

func classifyOne(text string, opts ClassifyOptions) HeadingCandidate {
	return ClassifyLine(linesOf(text), 0, opts)
}

func TestClassifyLine_Rejections(t *testing.T) {
	tests := []struct {
		text   string
		reason string
	}{
		{"A. 1 B. 2 C. 3 D. 4", ReasonQuestionItem},
		{"a) Newton b) Joule c) Watt d) Pascal", ReasonQuestionItem},
		{"B. Lực ma sát trượt", ReasonQuestionItem},
		{"Câu 3: Tính gia tốc của vật.", ReasonQuestionItem},
		{"Q1. What is inertia?", ReasonQuestionItem},
		{"1. What is inertia?", ReasonQuestionItem},
		{"Tính giá trị của x khi x = 2.", ReasonQuestionItem},
		{"Explain why the sky is blue.", ReasonQuestionItem},
		{"# Câu 1", ReasonQuestionItem},
		{"# Câu 2 Tính giá trị của biểu thức", ReasonQuestionItem},
		{"## Question 3 Why does ice float?", ReasonQuestionItem},
		{"# Compute the derivative of f at 2", ReasonQuestionItem},
		{"**Câu 4:** Nêu định luật Ôm.", ReasonQuestionItem},
		{"Bài tập", ReasonAuxiliary},
		{"Bài tập 1", ReasonAuxiliary},
		{"ĐÁP ÁN", ReasonAuxiliary},
		{"Ví dụ 2", ReasonAuxiliary},
		{"3. Luyện tập", ReasonAuxiliary},
		{"Review questions", ReasonAuxiliary},
		{"Phụ lục B: Đáp án", ReasonAuxiliary},
		{"2.3.1 Chi tiết", ReasonTooDeep},
		{"### Chi tiết", ReasonTooDeep},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c := classifyOne(tt.text, ClassifyOptions{})
			if c.Boundary() {
				t.Fatalf("expected %q not to be a boundary, got kind %s", tt.text, c.Kind)
			}
			if !c.Rejected || c.RejectReason != tt.reason {
				t.Errorf("expected rejection %q, got rejected=%v reason=%q", tt.reason, c.Rejected, c.RejectReason)
			}
		})
	}
}

func TestClassifyLine_Labels(t *testing.T) {
	tests := []struct {
		text  string
		kind  HeadingKind
		unit  string
		index string
		title string
		depth int
	}{
		{"Chương 1: Mở đầu", KindChapter, "chapter", "1", "Mở đầu", 1},
		{"CHƯƠNG II. ĐỘNG LỰC HỌC", KindChapter, "chapter", "II", "ĐỘNG LỰC HỌC", 1},
		{"Chapter 4 - Thermodynamics", KindChapter, "chapter", "4", "Thermodynamics", 1},
		{"Phần 2", KindChapter, "part", "2", "", 1},
		{"Bài 3. Chuyển động thẳng đều", KindLesson, "lesson", "3", "Chuyển động thẳng đều", 1},
		{"Lesson 12: Cell division", KindLesson, "lesson", "12", "Cell division", 1},
		{"Mục 2.1: Vận tốc", KindTopicLabel, "section", "2.1", "Vận tốc", 2},
		{"Chủ đề 5: Sóng âm", KindTopicLabel, "topic", "5", "Sóng âm", 1},
		{"Phụ lục A: Bảng số liệu", KindAppendix, "appendix", "A", "Bảng số liệu", 1},
		{"2.1 Vận tốc tức thời", KindTopicLabel, "", "2.1", "Vận tốc tức thời", 2},
		{"II. Cơ sở lý thuyết", KindTopicLabel, "", "II", "Cơ sở lý thuyết", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c := classifyOne(tt.text, ClassifyOptions{})
			if !c.Boundary() {
				t.Fatalf("expected boundary, got kind %s rejected=%v (%s)", c.Kind, c.Rejected, c.RejectReason)
			}
			if c.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, c.Kind)
			}
			if c.Unit != tt.unit {
				t.Errorf("expected unit %q, got %q", tt.unit, c.Unit)
			}
			if c.Index != tt.index {
				t.Errorf("expected index %q, got %q", tt.index, c.Index)
			}
			if c.Title != tt.title {
				t.Errorf("expected title %q, got %q", tt.title, c.Title)
			}
			if c.Depth != tt.depth {
				t.Errorf("expected depth %d, got %d", tt.depth, c.Depth)
			}
		})
	}
}

func TestClassifyLine_Markdown(t *testing.T) {
	c := classifyOne("## Giới thiệu", ClassifyOptions{})
	if c.Kind != KindTopicLabel || !c.Markdown || c.Depth != 2 || c.Title != "Giới thiệu" {
		t.Errorf("unexpected markdown heading: %+v", c)
	}
	c = classifyOne("# Chương 4: Nhiệt học", ClassifyOptions{})
	if c.Kind != KindChapter || c.Title != "Nhiệt học" || c.Depth != 1 {
		t.Errorf("expected labelled markdown chapter, got %+v", c)
	}
	c = classifyOne("### Chi tiết", ClassifyOptions{MaxNumericDepth: 3})
	if !c.Boundary() {
		t.Errorf("expected depth 3 accepted with a raised cap, got %+v", c)
	}
}

func TestClassifyLine_AllCaps(t *testing.T) {
	c := classifyOne("KHÁI NIỆM CƠ BẢN VỀ ĐIỆN TRƯỜNG", ClassifyOptions{})
	if c.Kind != KindTopicLabel || !c.Boundary() {
		t.Errorf("expected all-caps topic label, got %+v", c)
	}
	if c := classifyOne("ABC", ClassifyOptions{}); c.Kind != KindNone {
		t.Errorf("expected short caps to be ignored, got %s", c.Kind)
	}
}

func TestClassifyLine_ProseIsNotHeading(t *testing.T) {
	for _, text := range []string{
		"Chương 3 trình bày về sóng cơ học.",
		"Part of the problem is friction",
		"Tính chất của kim loại",
		"Trang 12",
	} {
		if c := classifyOne(text, ClassifyOptions{}); c.Kind != KindNone || c.Rejected {
			t.Errorf("%q: expected plain line, got kind %s rejected=%v", text, c.Kind, c.Rejected)
		}
	}
}

func TestClassifyLine_AppendixAsBoundary(t *testing.T) {
	c := classifyOne("Phụ lục B: Đáp án", ClassifyOptions{AppendixAsBoundary: true})
	if c.Kind != KindAppendix || !c.Boundary() {
		t.Errorf("expected appendix boundary, got %+v", c)
	}
}

func TestClassifyLine_SoftSubject(t *testing.T) {
	lines := linesOf(
		"Định luật Ohm (Ohm's law)",
		"",
		"Ý chính:",
		"Cường độ dòng điện tỉ lệ thuận với hiệu điện thế đặt vào hai đầu dây dẫn.",
	)
	c := ClassifyLine(lines, 0, ClassifyOptions{})
	if c.Kind != KindSoftSubject || c.Title != "Định luật Ohm (Ohm's law)" {
		t.Errorf("expected soft subject, got %+v", c)
	}

	noMarker := linesOf(
		"Định luật Ohm (Ohm's law)",
		"Cường độ dòng điện tỉ lệ thuận với hiệu điện thế đặt vào hai đầu dây dẫn.",
	)
	if c := ClassifyLine(noMarker, 0, ClassifyOptions{}); c.Kind != KindNone {
		t.Errorf("expected no heading without a marker line, got %s", c.Kind)
	}
}

func TestClassifyLine_RejectionBeatsAcceptance(t *testing.T) {
	// Both an all-caps line and an option list; the question rule runs first.
	c := classifyOne("A. NEWTON B. JOULE C. WATT D. PASCAL", ClassifyOptions{})
	if c.Boundary() || c.RejectReason != ReasonQuestionItem {
		t.Errorf("expected question rejection, got %+v", c)
	}
	// An auxiliary heading written as a lesson label stays auxiliary.
	c = classifyOne("Bài tập 3: Luyện tập tổng hợp", ClassifyOptions{})
	if c.Boundary() || c.RejectReason != ReasonAuxiliary {
		t.Errorf("expected auxiliary rejection, got %+v", c)
	}
}

func TestIsMarkerLine(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Ý chính:", true},
		{"[Key idea]", true},
		{"Summary", true},
		{"Tóm tắt - chương 2", true},
		{"Khái niệm về lực", false},
		{"Summary of the French revolution and its consequences", false},
	}
	for _, tt := range tests {
		if got := isMarkerLine(tt.text); got != tt.want {
			t.Errorf("isMarkerLine(%q): expected %v, got %v", tt.text, tt.want, got)
		}
	}
}

func TestBadHeadingCandidate(t *testing.T) {
	tests := []struct {
		text   string
		reason string
	}{
		{"x", ReasonTooShort},
		{strings.Repeat("Rất dài ", 20), ReasonTooLong},
		{"https://example.com/page", ReasonURL},
		{"| a | b | c |", ReasonTableRow},
		{"2019 2020 2021 Doanh thu", ReasonTableRow},
		{"F = m × a", ReasonEquation},
		{"Trang 12", ReasonUIMarker},
		{"Click here to continue", ReasonUIMarker},
		{"Xem thêm", ReasonUIMarker},
		{"Vận tốc: quãng đường chia cho thời gian", ReasonDefinition},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			bad, reason := badHeadingCandidate(tt.text)
			if !bad || reason != tt.reason {
				t.Errorf("%q: expected %q, got bad=%v reason=%q", tt.text, tt.reason, bad, reason)
			}
		})
	}

	for _, ok := range []string{
		"Chương 1: Mở đầu",
		"Chủ đề: Sóng âm",
		"2.1: Vận tốc",
		"Back propagation",
		"Định luật Ohm (Ohm's law)",
	} {
		if bad, reason := badHeadingCandidate(ok); bad {
			t.Errorf("%q: expected accepted heading, got %q", ok, reason)
		}
	}
}

func TestClassifyAt_VetoesBadCandidate(t *testing.T) {
	lines := linesOf("WWW.EXAMPLE.COM", "F = MA + KX", "Ý chính:")
	c, ok := classifyAt(lines, 0, ClassifyOptions{})
	if !ok || c.Boundary() || c.RejectReason != ReasonURL {
		t.Errorf("expected url veto, got ok=%v %+v", ok, c)
	}
	c, ok = classifyAt(lines, 1, ClassifyOptions{})
	if !ok || c.Boundary() || c.RejectReason != ReasonEquation {
		t.Errorf("expected equation veto, got ok=%v %+v", ok, c)
	}
	if _, ok := classifyAt(lines, 2, ClassifyOptions{}); ok {
		t.Error("expected marker line to be skipped")
	}
}

func TestAnalyzeText_OptionLineNeverBoundary(t *testing.T) {
	text := strings.Join([]string{
		"Chương 1: Dao động cơ",
		"Dao động điều hòa là dao động trong đó li độ của vật là một hàm côsin của thời gian.",
		"Câu 1: Chu kỳ của con lắc đơn phụ thuộc vào đại lượng nào?",
		"A. 1 B. 2 C. 3 D. 4",
		"A. Khối lượng",
		"B. Chiều dài dây treo",
		"Chương 2: Sóng cơ",
		"Sóng cơ là dao động cơ lan truyền trong một môi trường vật chất theo thời gian.",
	}, "\n")
	d := analyzeText(SplitLines(text, Collaborators{}), DefaultOptions())
	bounds := d.boundaries(func(HeadingCandidate) bool { return true })
	if len(bounds) != 2 {
		t.Fatalf("expected 2 boundaries, got %d", len(bounds))
	}
	for _, c := range d.cands {
		if strings.HasPrefix(c.Text, "A.") || strings.HasPrefix(c.Text, "B.") || strings.HasPrefix(c.Text, "Câu") {
			if c.Boundary() {
				t.Errorf("%q must not be a boundary", c.Text)
			}
		}
	}
}
