package outline

import "errors"

// Status is the top-level outcome of a segmentation call.
type Status string

const (
	StatusOK            Status = "OK"
	StatusNeedCleanText Status = "NEED_CLEAN_TEXT"
)

// ConfidenceTier buckets a coverage score.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

var (
	// ErrInputQuality means the text is too noisy to outline; resubmit cleaner text.
	ErrInputQuality = errors.New("outline: input text quality too low")

	// ErrNoTopics means no topic survived validation although the text looked usable.
	ErrNoTopics = errors.New("outline: no topics extracted")
)

// Line is a normalized line and its position in the source text.
type Line struct {
	Text  string
	Index int
}

// PageRange is the inclusive page span covered by one chunk.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Request carries the inputs of one segmentation call.
type Request struct {
	FullText string `json:"full_text"`

	// Chunks is an optional ordered list of text windows over the same document.
	Chunks []string `json:"chunks_texts,omitempty"`

	// ChunkPages, when set, is parallel to Chunks.
	ChunkPages []PageRange `json:"chunk_pages,omitempty"`

	// Pages is the source page count (0 if unknown).
	Pages int `json:"pages,omitempty"`

	// HeadingLevel "chapter" forces the chapter-only strategy.
	HeadingLevel string `json:"heading_level,omitempty"`

	MaxTopics      int     `json:"max_topics,omitempty"`
	MinQuality     float64 `json:"min_quality,omitempty"`
	IncludeDetails bool    `json:"include_details,omitempty"`
	RewriteTitles  bool    `json:"rewrite_titles,omitempty"`

	// ChunkAware segments directly over Chunks instead of FullText.
	ChunkAware bool `json:"chunk_aware,omitempty"`
}

// Topic is one entry of the reconstructed outline.
type Topic struct {
	Title          string         `json:"title"`
	DisplayTitle   string         `json:"display_title"`
	Summary        string         `json:"summary"`
	Keywords       []string       `json:"keywords"`
	BodyLength     int            `json:"body_length"`
	ContentPreview string         `json:"content_preview"`
	HasMoreContent bool           `json:"has_more_content"`
	CoverageScore  float64        `json:"coverage_score"`
	Confidence     ConfidenceTier `json:"confidence"`
	NeedsReview    bool           `json:"needs_review"`
	StartChunk     *int           `json:"start_chunk_index,omitempty"`
	EndChunk       *int           `json:"end_chunk_index,omitempty"`
	PageStart      *int           `json:"page_start,omitempty"`
	PageEnd        *int           `json:"page_end,omitempty"`
	IsAppendix     bool           `json:"is_appendix"`
	TextOnly       bool           `json:"text_only"`
	Outline        []string       `json:"outline,omitempty"`

	Body string `json:"-"`

	label    string
	mentions int
}

// Result is the engine output.
type Result struct {
	Status         Status        `json:"status"`
	Topics         []Topic       `json:"topics"`
	Quality        QualityReport `json:"quality"`
	Strategy       string        `json:"strategy,omitempty"`
	TOC            []TOCEntry    `json:"toc,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	Suggestion     string        `json:"suggestion,omitempty"`
	QualityWarning string        `json:"quality_warning,omitempty"`

	err error
}

// Err returns ErrInputQuality or ErrNoTopics for NEED_CLEAN_TEXT results.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	return r.err
}

// Enrichment is the optional per-topic detail produced by an Enricher.
type Enrichment struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	Outline  []string `json:"outline"`
}

func intPtr(v int) *int {
	return &v
}
