package outline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

const summaryLength = 240

// Engine reconstructs topic outlines. It holds no per-document state and
// is safe for concurrent use.
type Engine struct {
	opts   Options
	collab Collaborators
	log    *slog.Logger
}

// New creates an engine. Zero options take their defaults; log may be nil.
func New(opts Options, collab Collaborators, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{opts: opts.Normalize(), collab: collab, log: log}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Segment runs quality assessment, segmentation, normalization, merging and
// scoring. It never fails: unusable input yields StatusNeedCleanText and
// Result.Err reports which error class applies.
func (e *Engine) Segment(ctx context.Context, req Request) *Result {
	opts := e.opts
	minQuality := opts.MinQuality
	if req.MinQuality > 0 {
		minQuality = req.MinQuality
	}
	maxTopics := opts.DefaultMaxTopic
	if req.MaxTopics > 0 {
		maxTopics = req.MaxTopics
	}
	fullText := req.FullText
	if strings.TrimSpace(fullText) == "" && len(req.Chunks) > 0 {
		fullText = strings.Join(req.Chunks, "\n")
	}
	log := e.log.With("chars", len(fullText), "chunks", len(req.Chunks))

	quality := e.assess(fullText)

	segs, strategy, toc := e.segments(req, fullText, maxTopics)
	topics := dedupeTitles(toTopics(segs, opts))
	topics = mergeTopics(topics, opts, maxTopics)
	if req.RewriteTitles {
		topics = e.rewriteTitles(ctx, topics)
	}
	ev := buildEvidence(fullText, req.Chunks, opts.EvidenceMinLength)
	topics = scoreTopics(topics, ev, opts)
	e.finish(ctx, topics, req)
	sortTopics(topics)

	res := &Result{Status: StatusOK, Topics: topics, Quality: quality, Strategy: strategy, TOC: toc}
	switch {
	case len(topics) > 0:
		if quality.Score < minQuality+opts.MarginalBand {
			res.QualityWarning = fmt.Sprintf("text quality %.2f is marginal; some topics may be incomplete or misnamed", quality.Score)
		}
	case quality.Score < minQuality:
		res.Status = StatusNeedCleanText
		res.Topics = []Topic{}
		res.Reason = "low_text_quality"
		res.Suggestion = "The extracted text is too noisy to outline. Re-export the document as text, run OCR again, or paste a clean copy."
		res.err = ErrInputQuality
	default:
		res.Status = StatusNeedCleanText
		res.Topics = []Topic{}
		res.Reason = "no_topics_extracted"
		res.Suggestion = "No usable topic structure was found. Add headings such as \"Chương 1: ...\" or \"Bài 1: ...\" and resubmit."
		res.err = ErrNoTopics
	}

	log.Debug("outline segmented",
		"strategy", strategy,
		"segments", len(segs),
		"topics", len(res.Topics),
		"quality", quality.Score,
		"status", res.Status,
	)
	return res
}

func (e *Engine) assess(text string) QualityReport {
	if rep, ok := e.collab.score(text); ok {
		rep.Source = "external"
		return rep
	}
	return AssessQuality(text)
}

// segments runs either the chunk-aware variant or full-text segmentation
// followed by anchor mapping.
func (e *Engine) segments(req Request, fullText string, maxTopics int) ([]RawSegment, string, []TOCEntry) {
	if req.ChunkAware && len(req.Chunks) > 0 {
		d := analyzeChunks(req.Chunks, e.opts, e.collab)
		d.pages = req.Pages
		segs, strategy := segmentDocument(d, req.HeadingLevel, maxTopics)
		return segs, strategy, d.toc.Entries()
	}
	d := analyzeText(SplitLines(fullText, e.collab), e.opts)
	d.pages = req.Pages
	segs, strategy := segmentDocument(d, req.HeadingLevel, maxTopics)
	if len(req.Chunks) > 0 {
		tocLast := ""
		if d.toc.Seen() {
			tocLast = d.toc.LastLine()
		}
		segs = anchorSegments(segs, req.Chunks, tocLast)
	}
	return segs, strategy, d.toc.Entries()
}

func toTopics(segs []RawSegment, opts Options) []Topic {
	topics := make([]Topic, 0, len(segs))
	for _, s := range segs {
		if strings.TrimSpace(s.Body) == "" {
			continue
		}
		kws := s.Keywords
		if len(kws) == 0 {
			kws = extractKeywords(s.Body, opts.MaxKeywords)
		}
		title := normalizeTitle(s.Title, s.Appendix)
		if strings.TrimSpace(title) == "" {
			title = keywordTitle(s.Body)
		}
		if title == "" {
			continue
		}
		topics = append(topics, Topic{
			Title:      title,
			Body:       s.Body,
			Keywords:   kws,
			StartChunk: s.StartChunk,
			EndChunk:   s.EndChunk,
			IsAppendix: s.Appendix,
			TextOnly:   s.TextOnly,
			label:      s.Label,
		})
	}
	return topics
}

func (e *Engine) rewriteTitles(ctx context.Context, topics []Topic) []Topic {
	for i := range topics {
		if title, ok := e.collab.rewrite(ctx, topics[i].Body, topics[i].Title); ok {
			topics[i].Title = normalizeTitle(title, topics[i].IsAppendix)
		}
	}
	return dedupeTitles(topics)
}

// finish fills the presentation fields and optional details.
func (e *Engine) finish(ctx context.Context, topics []Topic, req Request) {
	details := e.collab.detailer(req.IncludeDetails, e.opts.MaxKeywords)
	for i := range topics {
		t := &topics[i]
		flat := strings.Join(strings.Fields(t.Body), " ")
		t.BodyLength = runeLen(t.Body)
		t.ContentPreview = truncateRunes(flat, e.opts.PreviewLength)
		t.HasMoreContent = runeLen(flat) > e.opts.PreviewLength
		t.Summary = firstSentences(t.Body, summaryLength)
		t.DisplayTitle = displayTitle(t.label, t.Title)
		if t.Keywords == nil {
			t.Keywords = []string{}
		}
		if len(req.ChunkPages) == len(req.Chunks) && t.StartChunk != nil && t.EndChunk != nil &&
			*t.EndChunk < len(req.ChunkPages) {
			t.PageStart = intPtr(req.ChunkPages[*t.StartChunk].Start)
			t.PageEnd = intPtr(req.ChunkPages[*t.EndChunk].End)
		}
		if en, ok := details.detail(ctx, *t); ok {
			if en.Summary != "" {
				t.Summary = en.Summary
			}
			if len(en.Keywords) > 0 {
				t.Keywords = en.Keywords
			}
			t.Outline = en.Outline
		}
	}
}

func displayTitle(label, title string) string {
	if label == "" || strings.HasPrefix(foldAligned(title), foldAligned(label)) {
		return title
	}
	return label + ": " + title
}

// sortTopics orders topics by start chunk; topics without a range inherit
// the key of the topic before them so discovery order is kept.
func sortTopics(topics []Topic) {
	keys := make([]int, len(topics))
	prev := -1
	for i, t := range topics {
		if t.StartChunk != nil {
			prev = *t.StartChunk
		}
		keys[i] = prev
	}
	order := make([]int, len(topics))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})
	sorted := make([]Topic, len(topics))
	for i, j := range order {
		sorted[i] = topics[j]
	}
	copy(topics, sorted)
}
