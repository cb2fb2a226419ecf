package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pathstore"
)

// Segmenter builds an outline from flattened text and chunks.
type Segmenter interface {
	Segment(ctx context.Context, req outline.Request) *outline.Result
}

// OutlineStore persists outlines by content hash.
type OutlineStore interface {
	GetOutline(ctx context.Context, hash string) (*pathstore.OutlineRecord, error)
	PutOutline(ctx context.Context, rec pathstore.OutlineRecord) error
}

// Worker processes a single document job.
type Worker struct {
	engine    Segmenter
	store     OutlineStore
	log       *slog.Logger
	chunkCfg  chunker.Config
	parseOpts parser.Options
}

// NewWorker creates a worker. store may be nil, in which case outlines are
// neither reused nor persisted.
func NewWorker(engine Segmenter, store OutlineStore, log *slog.Logger, chunkCfg chunker.Config, parseOpts parser.Options) *Worker {
	return &Worker{
		engine:    engine,
		store:     store,
		log:       log,
		chunkCfg:  chunkCfg,
		parseOpts: parseOpts,
	}
}

// Process runs the full outline pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	tree, err := parser.ParseFile(bytes.NewReader(job.FileData()), job.Filename, w.parseOpts)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		tree.Title = job.Title
	}

	flat := doctree.Flatten(tree)
	if strings.TrimSpace(flat.Text) == "" {
		log.Warn("no text extracted")
		job.AddError("no extractable text")
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	hash := ContentHashHex([]byte(flat.Text))
	job.SetParsed(flat.Pages, hash)

	// Phase 1.5: Reuse a stored outline for identical text.
	if w.store != nil && !job.Options.Force {
		rec, err := w.store.GetOutline(ctx, hash)
		if err != nil {
			log.Warn("dedup lookup failed, proceeding", "error", err)
		} else if rec != nil && rec.Result != nil {
			log.Info("reusing stored outline", "content_hash", hash)
			job.SetResult(rec.Result)
			job.SetStatus(StatusDupReused, "dedup")
			return
		}
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.Chunk(flat, w.chunkCfg)
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks), "pages", flat.Pages)

	// Phase 3: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	res := w.engine.Segment(ctx, buildRequest(flat, chunks, job.Options))
	job.SetResult(res)

	if res.Status == outline.StatusNeedCleanText {
		log.Info("document needs clean text", "reason", res.Reason, "quality", res.Quality.Score)
		job.AddError(res.Reason)
		job.SetStatus(StatusNeedCleanText, "segmenting")
		return
	}
	log.Info("segmented document", "strategy", res.Strategy, "topics", len(res.Topics))

	// Phase 4: Persist
	if w.store != nil {
		job.SetStatus(StatusStoring, "storing")
		rec := pathstore.OutlineRecord{
			ContentHash: hash,
			Filename:    job.Filename,
			Title:       tree.Title,
			Pages:       flat.Pages,
			Chunks:      len(chunks),
			CreatedAt:   job.CreatedAt,
			Result:      res,
		}
		if err := w.store.PutOutline(ctx, rec); err != nil {
			log.Error("store failed", "error", err)
			job.AddError(fmt.Sprintf("store: %s", err))
			job.SetStatus(StatusPartial, "done")
			return
		}
	}

	log.Info("job complete", "duration_ms", time.Since(start).Milliseconds())
	job.SetStatus(StatusCompleted, "done")
}

// buildRequest maps a flattened document and its chunks onto an engine
// request.
func buildRequest(flat doctree.Flat, chunks []doctree.Chunk, opts JobOptions) outline.Request {
	pages := make([]outline.PageRange, len(chunks))
	for i, c := range chunks {
		pages[i] = outline.PageRange{Start: c.PageStart, End: c.PageEnd}
	}
	return outline.Request{
		FullText:       flat.Text,
		Chunks:         chunker.Texts(chunks),
		ChunkPages:     pages,
		Pages:          flat.Pages,
		HeadingLevel:   opts.HeadingLevel,
		MaxTopics:      opts.MaxTopics,
		MinQuality:     opts.MinQuality,
		IncludeDetails: opts.IncludeDetails,
		RewriteTitles:  opts.RewriteTitles,
		ChunkAware:     opts.ChunkAware,
	}
}
