package outline

import (
	"context"
	"strings"
)

// Repairer fixes split letters or broken encoding in a single line.
// Implementations must be idempotent.
type Repairer interface {
	Repair(line string) (string, error)
}

// QualityScorer scores the readability of a whole document text.
type QualityScorer interface {
	Score(text string) (QualityReport, error)
}

// TitleRewriter proposes a better title for a topic body.
type TitleRewriter interface {
	RewriteTitle(ctx context.Context, body, oldTitle string) (string, error)
}

// Enricher produces optional per-topic details.
type Enricher interface {
	Enrich(ctx context.Context, body, title string) (Enrichment, error)
}

// Collaborators groups the optional external collaborators. Any field may be nil.
type Collaborators struct {
	Repairer      Repairer
	QualityScorer QualityScorer
	TitleRewriter TitleRewriter
	Enricher      Enricher
}

// consult runs fn and reports ok=false on error, panic, or a cancelled
// context, so a failing collaborator looks exactly like a missing one.
func consult[T any](ctx context.Context, fn func() (T, error)) (out T, ok bool) {
	var zero T
	if ctx != nil && ctx.Err() != nil {
		return zero, false
	}
	defer func() {
		if r := recover(); r != nil {
			out, ok = zero, false
		}
	}()
	v, err := fn()
	if err != nil {
		return zero, false
	}
	return v, true
}

func (c Collaborators) repair(line string) (string, bool) {
	if c.Repairer == nil {
		return "", false
	}
	out, ok := consult(context.Background(), func() (string, error) { return c.Repairer.Repair(line) })
	if !ok || strings.TrimSpace(out) == "" {
		return "", false
	}
	return out, true
}

func (c Collaborators) score(text string) (QualityReport, bool) {
	if c.QualityScorer == nil {
		return QualityReport{}, false
	}
	rep, ok := consult(context.Background(), func() (QualityReport, error) { return c.QualityScorer.Score(text) })
	if !ok || rep.Score < 0 || rep.Score > 1 {
		return QualityReport{}, false
	}
	return rep, true
}

func (c Collaborators) rewrite(ctx context.Context, body, title string) (string, bool) {
	if c.TitleRewriter == nil {
		return "", false
	}
	out, ok := consult(ctx, func() (string, error) { return c.TitleRewriter.RewriteTitle(ctx, body, title) })
	if !ok {
		return "", false
	}
	out = strings.Join(strings.Fields(out), " ")
	out = strings.Trim(out, `"'`)
	if out == "" || runeLen(out) > 120 || strings.ContainsAny(out, "\n\r") {
		return "", false
	}
	if bad, _ := badHeadingCandidate(out); bad {
		return "", false
	}
	return out, true
}

// detailer is the single strategy the engine consults for topic details.
type detailer interface {
	detail(ctx context.Context, t Topic) (Enrichment, bool)
}

type noDetails struct{}

func (noDetails) detail(context.Context, Topic) (Enrichment, bool) {
	return Enrichment{}, false
}

type enricherDetails struct {
	enricher Enricher
	maxKw    int
}

func (d enricherDetails) detail(ctx context.Context, t Topic) (Enrichment, bool) {
	e, ok := consult(ctx, func() (Enrichment, error) { return d.enricher.Enrich(ctx, t.Body, t.Title) })
	if !ok {
		return Enrichment{}, false
	}
	e.Summary = strings.TrimSpace(e.Summary)
	e.Keywords = cleanKeywords(e.Keywords, d.maxKw)
	var outline []string
	for _, o := range e.Outline {
		if o = strings.TrimSpace(o); o != "" {
			outline = append(outline, o)
		}
	}
	e.Outline = outline
	if e.Summary == "" && len(e.Keywords) == 0 && len(e.Outline) == 0 {
		return Enrichment{}, false
	}
	return e, true
}

func (c Collaborators) detailer(include bool, maxKw int) detailer {
	if !include || c.Enricher == nil {
		return noDetails{}
	}
	return enricherDetails{enricher: c.Enricher, maxKw: maxKw}
}

// cleanKeywords lowercases, trims and dedupes keywords, keeping order.
func cleanKeywords(in []string, max int) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.Join(strings.Fields(k), " "))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
