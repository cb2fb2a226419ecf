package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docoutline/internal/outline"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Outline sink (optional)
	PathstoreURL    string
	PathstoreAPIKey string

	// Claude enrichment (optional)
	AnthropicAPIKey string
	AnthropicModel  string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentSegment int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Engine
	TuningFile string
	Outline    outline.Options
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCOUTLINE_API_KEY"),

		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentSegment: envInt("MAX_CONCURRENT_SEGMENT", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", 1500),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", 200),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		TuningFile: os.Getenv("OUTLINE_TUNING_FILE"),
		Outline:    outline.DefaultOptions(),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentSegment <= 0 {
		cfg.MaxConcurrentSegment = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 1500
	}
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = 200
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// LoadOutline resolves the engine options: defaults, then the tuning file
// if one is configured, then the OUTLINE_* env overrides.
func (c *Config) LoadOutline() error {
	opts := outline.DefaultOptions()
	if c.TuningFile != "" {
		tuned, err := LoadTuning(c.TuningFile)
		if err != nil {
			return err
		}
		opts = tuned
	}
	opts.MinQuality = envFloat("OUTLINE_MIN_QUALITY", opts.MinQuality)
	opts.DefaultMaxTopic = envInt("OUTLINE_MAX_TOPICS", opts.DefaultMaxTopic)
	if v := os.Getenv("OUTLINE_LESSON_MODE"); v != "" {
		opts.LessonMode = outline.LessonMode(v)
	}
	c.Outline = opts
	return nil
}

// LoadTuning reads a YAML file over the default options. Fields absent from
// the file keep their defaults.
func LoadTuning(path string) (outline.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return outline.Options{}, fmt.Errorf("read tuning file: %w", err)
	}
	opts := outline.DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return outline.Options{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return opts, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	if c.DefaultChunkOverlap >= c.DefaultChunkSize {
		return fmt.Errorf("DEFAULT_CHUNK_OVERLAP (%d) must be smaller than DEFAULT_CHUNK_SIZE (%d)",
			c.DefaultChunkOverlap, c.DefaultChunkSize)
	}
	switch c.Outline.LessonMode {
	case "", outline.LessonOff, outline.LessonAuto, outline.LessonAlways:
	default:
		return fmt.Errorf("OUTLINE_LESSON_MODE must be off, auto or always, got %q", c.Outline.LessonMode)
	}
	if q := c.Outline.MinQuality; q < 0 || q > 1 {
		return fmt.Errorf("OUTLINE_MIN_QUALITY must be within [0,1], got %v", q)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
