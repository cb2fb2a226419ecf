package outline

import (
	"fmt"
	"strings"
	"testing"
)

const cleanProse = "Quang hợp là quá trình cây xanh sử dụng năng lượng ánh sáng để tổng hợp chất hữu cơ. " +
	"Photosynthesis takes place in the chloroplasts of green plant cells."

func TestAssessQuality_Empty(t *testing.T) {
	rep := AssessQuality("   \n  ")
	if rep.Score != 0 {
		t.Errorf("expected score 0 for empty text, got %v", rep.Score)
	}
	if rep.Source != "builtin" {
		t.Errorf("expected builtin source, got %q", rep.Source)
	}
}

func TestAssessQuality_CleanProse(t *testing.T) {
	rep := AssessQuality(cleanProse)
	if rep.Score < 0.9 {
		t.Errorf("expected high score for clean prose, got %v (%+v)", rep.Score, rep.Diagnostics)
	}
	if rep.Diagnostics.LetterRatio < 0.8 {
		t.Errorf("expected letter ratio above 0.8, got %v", rep.Diagnostics.LetterRatio)
	}
}

func TestAssessQuality_SymbolNoise(t *testing.T) {
	noisy := strings.Repeat("@@ ## $$ ^^ ~~ ** ++ == << >> || \\\\ ab\n", 40)
	rep := AssessQuality(noisy)
	if rep.Score >= 0.35 {
		t.Errorf("expected low score for symbol noise, got %v", rep.Score)
	}
	if rep.Diagnostics.SymbolRatio < 0.6 {
		t.Errorf("expected symbol ratio above 0.6, got %v", rep.Diagnostics.SymbolRatio)
	}
}

func TestAssessQuality_Garbled(t *testing.T) {
	rep := AssessQuality(strings.Repeat("ChÆ°Æ¡ng má»™t \ufffd\ufffd ", 30))
	if rep.Score >= 0.35 {
		t.Errorf("expected low score for mojibake, got %v", rep.Score)
	}
	if rep.Diagnostics.GarbledRatio == 0 {
		t.Error("expected garbled characters to be counted")
	}
}

func TestAssessQuality_ExemptsFencedJSON(t *testing.T) {
	var items []string
	for i := 0; i < 20; i++ {
		items = append(items, fmt.Sprintf(`{"id": %d, "tags": ["a", "b"], "ok": true}`, i))
	}
	text := cleanProse + "\n```json\n[" + strings.Join(items, ",\n") + "]\n```\n" + cleanProse
	rep := AssessQuality(text)
	if rep.Diagnostics.ExemptedChars == 0 {
		t.Fatal("expected the JSON block to be exempted")
	}
	if rep.Score < 0.9 {
		t.Errorf("expected exempted block not to lower the score, got %v", rep.Score)
	}
}

func TestAssessQuality_ExemptsDataLines(t *testing.T) {
	var lines []string
	for i := 0; i < 6; i++ {
		lines = append(lines, fmt.Sprintf(`{"step": %d, "value": "%d"}`, i, i*i))
	}
	text := cleanProse + "\n" + strings.Join(lines, "\n") + "\n" + cleanProse
	rep := AssessQuality(text)
	if rep.Diagnostics.ExemptedChars == 0 {
		t.Fatal("expected data-like lines to be exempted")
	}
	if rep.Score < 0.9 {
		t.Errorf("expected score unaffected by data lines, got %v", rep.Score)
	}

	short := cleanProse + "\n" + strings.Join(lines[:2], "\n")
	if AssessQuality(short).Diagnostics.ExemptedChars != 0 {
		t.Error("expected fewer than five data lines to be scored normally")
	}
}
