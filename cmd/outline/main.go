// Command outline prints the topic outline of a document as JSON.
//
//	outline -file ./vatly10.pdf
//	outline -file ./notes.md -chapter -max-topics 12
//	ANTHROPIC_API_KEY=... outline -file ./book.docx -details -rewrite
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// exitNeedCleanText is returned when the document could not be outlined.
const exitNeedCleanText = 3

func main() {
	var (
		filePath     = flag.String("file", "", "Path to the document (.txt, .md, .html, .pdf, .docx)")
		chapterOnly  = flag.Bool("chapter", false, "Split on chapters only")
		details      = flag.Bool("details", false, "Enrich each topic with summary, keywords and outline (needs ANTHROPIC_API_KEY)")
		rewrite      = flag.Bool("rewrite", false, "Rewrite weak titles with the LLM (needs ANTHROPIC_API_KEY)")
		chunkAware   = flag.Bool("chunk-aware", false, "Detect headings chunk by chunk")
		maxTopics    = flag.Int("max-topics", 0, "Maximum number of topics (0 = engine default)")
		minQuality   = flag.Float64("min-quality", 0, "Minimum text quality (0 = engine default)")
		tuningFile   = flag.String("tuning", os.Getenv("OUTLINE_TUNING_FILE"), "YAML file overriding engine options")
		chunkSize    = flag.Int("chunk-size", 1500, "Chunk size in tokens")
		chunkOverlap = flag.Int("chunk-overlap", 200, "Chunk overlap in tokens")
		noPdftotext  = flag.Bool("no-pdftotext", false, "Disable the pdftotext fallback for PDFs")
		verbose      = flag.Bool("v", false, "Debug logging")
		timeout      = flag.Duration("timeout", 10*time.Minute, "Overall time limit")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: outline -file <document> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := outline.DefaultOptions()
	if *tuningFile != "" {
		tuned, err := config.LoadTuning(*tuningFile)
		if err != nil {
			log.Error("load tuning", "error", err)
			os.Exit(1)
		}
		opts = tuned
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var collab outline.Collaborators
	if *details || *rewrite {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			model := os.Getenv("ANTHROPIC_MODEL")
			if model == "" {
				model = "claude-sonnet-4-5-20250929"
			}
			claude := extract.NewClaudeClient(key, model)
			defer claude.Close()
			collab.TitleRewriter = claude
			collab.Enricher = claude
		} else {
			log.Warn("ANTHROPIC_API_KEY not set, using deterministic output only")
		}
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("open file", "error", err)
		os.Exit(1)
	}
	tree, err := parser.ParseFile(f, *filePath, parser.Options{PDFFallbackPdftotext: !*noPdftotext})
	f.Close()
	if err != nil {
		log.Error("parse", "error", err)
		os.Exit(1)
	}

	flat := doctree.Flatten(tree)
	chunks := chunker.Chunk(flat, chunker.Config{ChunkSize: *chunkSize, ChunkOverlap: *chunkOverlap})
	log.Info("parsed document", "title", tree.Title, "pages", flat.Pages, "chunks", len(chunks))

	pages := make([]outline.PageRange, len(chunks))
	for i, c := range chunks {
		pages[i] = outline.PageRange{Start: c.PageStart, End: c.PageEnd}
	}
	req := outline.Request{
		FullText:       flat.Text,
		Chunks:         chunker.Texts(chunks),
		ChunkPages:     pages,
		Pages:          flat.Pages,
		MaxTopics:      *maxTopics,
		MinQuality:     *minQuality,
		IncludeDetails: *details,
		RewriteTitles:  *rewrite,
		ChunkAware:     *chunkAware,
	}
	if *chapterOnly {
		req.HeadingLevel = "chapter"
	}

	start := time.Now()
	res := outline.New(opts, collab, log).Segment(ctx, req)
	log.Info("segmented", "strategy", res.Strategy, "topics", len(res.Topics),
		"quality", res.Quality.Score, "duration_ms", time.Since(start).Milliseconds())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		log.Error("encode result", "error", err)
		os.Exit(1)
	}
	if res.Status == outline.StatusNeedCleanText {
		log.Warn("document needs clean text", "reason", res.Reason, "suggestion", res.Suggestion)
		os.Exit(exitNeedCleanText)
	}
}
