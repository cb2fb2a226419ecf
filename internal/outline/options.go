package outline

// LessonMode controls when the lesson strategy takes over.
type LessonMode string

const (
	LessonOff    LessonMode = "off"
	LessonAuto   LessonMode = "auto"
	LessonAlways LessonMode = "always"
)

// Options holds the tunable parameters of the engine. Zero values are
// replaced by DefaultOptions() values in Normalize.
type Options struct {
	// TOC handling.
	TOCMaxLines int `json:"toc_max_lines" yaml:"toc_max_lines"`

	// MaxNumericDepth caps "2.3"-style numbering accepted as a boundary.
	MaxNumericDepth int `json:"max_numeric_depth" yaml:"max_numeric_depth"`

	// AppendixAsBoundary lets "Appendix: answer key" lines open a topic.
	AppendixAsBoundary bool `json:"appendix_as_boundary" yaml:"appendix_as_boundary"`

	LessonMode       LessonMode `json:"lesson_mode" yaml:"lesson_mode"`
	MinLessonHeads   int        `json:"min_lesson_headings" yaml:"min_lesson_headings"`
	ChunkScanDepth   int        `json:"chunk_scan_depth" yaml:"chunk_scan_depth"`
	TOCLeakBoundary  int        `json:"toc_leak_boundaries" yaml:"toc_leak_boundaries"`
	TOCLeakLineSpan  int        `json:"toc_leak_line_span" yaml:"toc_leak_line_span"`
	FallbackMinParts int        `json:"fallback_min_parts" yaml:"fallback_min_parts"`
	FallbackMaxParts int        `json:"fallback_max_parts" yaml:"fallback_max_parts"`

	// Merging.
	MinBodyLength   int     `json:"min_body_length" yaml:"min_body_length"`
	MergeSimilarity float64 `json:"merge_similarity" yaml:"merge_similarity"`
	MaxKeywords     int     `json:"max_keywords" yaml:"max_keywords"`
	DefaultMaxTopic int     `json:"default_max_topics" yaml:"default_max_topics"`

	// Scoring.
	EvidenceMinLength int     `json:"evidence_min_length" yaml:"evidence_min_length"`
	StrictMinMentions int     `json:"strict_min_mentions" yaml:"strict_min_mentions"`
	HighCoverage      float64 `json:"high_coverage" yaml:"high_coverage"`
	MediumCoverage    float64 `json:"medium_coverage" yaml:"medium_coverage"`

	// Quality gate.
	MinQuality    float64 `json:"min_quality" yaml:"min_quality"`
	MarginalBand  float64 `json:"marginal_band" yaml:"marginal_band"`
	PreviewLength int     `json:"preview_length" yaml:"preview_length"`

	Selection SelectionWeights `json:"selection" yaml:"selection"`
}

// SelectionWeights shape the auto strategy score. The values are empirical.
type SelectionWeights struct {
	Proximity       float64 `json:"proximity" yaml:"proximity"`
	Undersized      float64 `json:"undersized" yaml:"undersized"`
	FragmentTitles  float64 `json:"fragment_titles" yaml:"fragment_titles"`
	ExcessiveCount  float64 `json:"excessive_count" yaml:"excessive_count"`
	ChapterBonus    float64 `json:"chapter_bonus" yaml:"chapter_bonus"`
	LongDocChars    int     `json:"long_doc_chars" yaml:"long_doc_chars"`
	UndersizedChars int     `json:"undersized_chars" yaml:"undersized_chars"`
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		TOCMaxLines:       260,
		MaxNumericDepth:   2,
		LessonMode:        LessonAuto,
		MinLessonHeads:    4,
		ChunkScanDepth:    500,
		TOCLeakBoundary:   14,
		TOCLeakLineSpan:   250,
		FallbackMinParts:  3,
		FallbackMaxParts:  8,
		MinBodyLength:     300,
		MergeSimilarity:   0.75,
		MaxKeywords:       16,
		DefaultMaxTopic:   60,
		EvidenceMinLength: 40,
		StrictMinMentions: 3,
		HighCoverage:      0.6,
		MediumCoverage:    0.3,
		MinQuality:        0.35,
		MarginalBand:      0.15,
		PreviewLength:     400,
		Selection: SelectionWeights{
			Proximity:       10,
			Undersized:      6,
			FragmentTitles:  4,
			ExcessiveCount:  5,
			ChapterBonus:    2,
			LongDocChars:    60000,
			UndersizedChars: 400,
		},
	}
}

// Normalize fills zero fields from DefaultOptions.
func (o Options) Normalize() Options {
	d := DefaultOptions()
	setInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	setFloat := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	setInt(&o.TOCMaxLines, d.TOCMaxLines)
	setInt(&o.MaxNumericDepth, d.MaxNumericDepth)
	setInt(&o.MinLessonHeads, d.MinLessonHeads)
	setInt(&o.ChunkScanDepth, d.ChunkScanDepth)
	setInt(&o.TOCLeakBoundary, d.TOCLeakBoundary)
	setInt(&o.TOCLeakLineSpan, d.TOCLeakLineSpan)
	setInt(&o.FallbackMinParts, d.FallbackMinParts)
	setInt(&o.FallbackMaxParts, d.FallbackMaxParts)
	setInt(&o.MinBodyLength, d.MinBodyLength)
	setInt(&o.MaxKeywords, d.MaxKeywords)
	setInt(&o.DefaultMaxTopic, d.DefaultMaxTopic)
	setInt(&o.EvidenceMinLength, d.EvidenceMinLength)
	setInt(&o.StrictMinMentions, d.StrictMinMentions)
	setInt(&o.PreviewLength, d.PreviewLength)
	setFloat(&o.MergeSimilarity, d.MergeSimilarity)
	setFloat(&o.HighCoverage, d.HighCoverage)
	setFloat(&o.MediumCoverage, d.MediumCoverage)
	setFloat(&o.MinQuality, d.MinQuality)
	setFloat(&o.MarginalBand, d.MarginalBand)
	switch o.LessonMode {
	case LessonOff, LessonAuto, LessonAlways:
	default:
		o.LessonMode = d.LessonMode
	}
	if o.FallbackMaxParts < o.FallbackMinParts {
		o.FallbackMaxParts = o.FallbackMinParts
	}

	w, dw := &o.Selection, d.Selection
	setFloat(&w.Proximity, dw.Proximity)
	setFloat(&w.Undersized, dw.Undersized)
	setFloat(&w.FragmentTitles, dw.FragmentTitles)
	setFloat(&w.ExcessiveCount, dw.ExcessiveCount)
	setFloat(&w.ChapterBonus, dw.ChapterBonus)
	setInt(&w.LongDocChars, dw.LongDocChars)
	setInt(&w.UndersizedChars, dw.UndersizedChars)
	return o
}

func (o Options) classifyOptions() ClassifyOptions {
	return ClassifyOptions{AppendixAsBoundary: o.AppendixAsBoundary, MaxNumericDepth: o.MaxNumericDepth}
}
