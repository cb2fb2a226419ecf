package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("JOB_TTL", "")
	t.Setenv("PATHSTORE_URL", "")

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.JobTTL)
	}
	if cfg.PathstoreURL != "" {
		t.Errorf("expected no outline sink by default, got %q", cfg.PathstoreURL)
	}
	if cfg.Outline.MinQuality != outline.DefaultOptions().MinQuality {
		t.Errorf("expected default min quality, got %v", cfg.Outline.MinQuality)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WORKER_COUNT", "9")
	t.Setenv("MAX_CONCURRENT_SEGMENT", "-1")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	cfg := Load()
	if cfg.WorkerCount != 9 {
		t.Errorf("expected 9 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxConcurrentSegment != 4 {
		t.Errorf("expected negative concurrency reset to 4, got %d", cfg.MaxConcurrentSegment)
	}
	if cfg.JobTTL != 15*time.Minute {
		t.Errorf("expected 15m TTL, got %v", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected default upload limit on bad input, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadOutline_TuningFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	yml := `
toc_max_lines: 120
merge_similarity: 0.8
lesson_mode: off
selection:
  proximity: 12
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OUTLINE_MAX_TOPICS", "25")
	t.Setenv("OUTLINE_MIN_QUALITY", "")
	t.Setenv("OUTLINE_LESSON_MODE", "")

	cfg := Config{TuningFile: path}
	if err := cfg.LoadOutline(); err != nil {
		t.Fatalf("load outline: %v", err)
	}
	o := cfg.Outline
	if o.TOCMaxLines != 120 {
		t.Errorf("expected toc cap 120, got %d", o.TOCMaxLines)
	}
	if o.MergeSimilarity != 0.8 {
		t.Errorf("expected merge similarity 0.8, got %v", o.MergeSimilarity)
	}
	if o.LessonMode != outline.LessonOff {
		t.Errorf("expected lesson mode off, got %q", o.LessonMode)
	}
	if o.Selection.Proximity != 12 {
		t.Errorf("expected proximity weight 12, got %v", o.Selection.Proximity)
	}
	if o.Selection.ChapterBonus != outline.DefaultOptions().Selection.ChapterBonus {
		t.Errorf("expected untouched weights to keep defaults, got %v", o.Selection.ChapterBonus)
	}
	if o.DefaultMaxTopic != 25 {
		t.Errorf("expected env max topics 25, got %d", o.DefaultMaxTopic)
	}
	if o.MinBodyLength != outline.DefaultOptions().MinBodyLength {
		t.Errorf("expected default min body length, got %d", o.MinBodyLength)
	}
}

func TestLoadTuning_Errors(t *testing.T) {
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("toc_max_lines: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuning(path); err == nil || !strings.Contains(err.Error(), "parse tuning file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		APIKey:              "k",
		DefaultChunkSize:    1500,
		DefaultChunkOverlap: 200,
		Outline:             outline.DefaultOptions(),
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing api key", func(c *Config) { c.APIKey = "" }, "DOCOUTLINE_API_KEY"},
		{"sink without key", func(c *Config) { c.PathstoreURL = "http://ps" }, "PATHSTORE_API_KEY"},
		{"sink with key", func(c *Config) { c.PathstoreURL = "http://ps"; c.PathstoreAPIKey = "p" }, ""},
		{"overlap too large", func(c *Config) { c.DefaultChunkOverlap = 1500 }, "DEFAULT_CHUNK_OVERLAP"},
		{"bad lesson mode", func(c *Config) { c.Outline.LessonMode = "sometimes" }, "OUTLINE_LESSON_MODE"},
		{"quality out of range", func(c *Config) { c.Outline.MinQuality = 1.5 }, "OUTLINE_MIN_QUALITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
