package outline

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// segmentDocument picks and runs a strategy. Order: forced chapter level,
// lesson mode, then auto-selection between heading and chapter, then the
// paragraph fallback.
func segmentDocument(d *document, headingLevel string, maxTopics int) ([]RawSegment, string) {
	if strings.EqualFold(headingLevel, "chapter") {
		if segs := chapterSegments(d); len(segs) > 0 {
			return segs, StrategyChapter
		}
		if segs := headingSegments(d); len(segs) > 0 {
			return segs, StrategyHeading
		}
		return paragraphSegments(d), StrategyParagraph
	}

	switch d.opts.LessonMode {
	case LessonAlways:
		if segs := lessonSegments(d); len(segs) > 0 {
			return segs, StrategyLesson
		}
	case LessonAuto:
		if d.countKind(KindLesson) >= d.opts.MinLessonHeads {
			if segs := lessonSegments(d); len(segs) > 0 {
				return segs, StrategyLesson
			}
		}
	}

	heading := headingSegments(d)
	chapter := chapterSegments(d)
	switch {
	case len(heading) == 0 && len(chapter) == 0:
		return paragraphSegments(d), StrategyParagraph
	case len(chapter) == 0:
		return heading, StrategyHeading
	case len(heading) == 0:
		return chapter, StrategyChapter
	}
	target := targetTopicCount(d.chars, d.pages, maxTopics)
	hs := scoreSegmentation(heading, StrategyHeading, target, d.chars, d.opts.Selection)
	cs := scoreSegmentation(chapter, StrategyChapter, target, d.chars, d.opts.Selection)
	if cs > hs {
		return chapter, StrategyChapter
	}
	return heading, StrategyHeading
}

// targetTopicCount estimates a good topic count from document size:
// clamp(12, 60, max(chars/12000, pages/2.2)), capped by maxTopics.
func targetTopicCount(chars, pages, maxTopics int) int {
	byLen := int(math.Round(float64(chars) / 12000))
	byPages := int(math.Round(float64(pages) / 2.2))
	t := clampInt(12, 60, max(byLen, byPages))
	if maxTopics > 0 && t > maxTopics {
		t = maxTopics
	}
	return t
}

// scoreSegmentation rewards closeness to the target count and penalizes
// undersized segments, fragment titles and runaway counts. Chapter titles
// earn a bonus on long documents.
func scoreSegmentation(segs []RawSegment, strategy string, target, chars int, w SelectionWeights) float64 {
	n := len(segs)
	if n == 0 {
		return math.Inf(-1)
	}
	proximity := 1 - math.Abs(float64(n-target))/float64(max(n, target))

	undersized, fragments, chapters := 0, 0, 0
	for _, s := range segs {
		if runeLen(s.Body) < w.UndersizedChars {
			undersized++
		}
		if looksLikeFragment(s.Title) {
			fragments++
		}
		if s.Kind == KindChapter {
			chapters++
		}
	}
	excessive := 0.0
	if n > 2*target {
		excessive = float64(n-2*target) / float64(n)
	}

	score := w.Proximity*proximity -
		w.Undersized*float64(undersized)/float64(n) -
		w.FragmentTitles*float64(fragments)/float64(n) -
		w.ExcessiveCount*excessive
	if strategy == StrategyChapter && chars >= w.LongDocChars {
		score += w.ChapterBonus * float64(chapters) / float64(n)
	}
	return score
}

// looksLikeFragment flags titles that read like a piece of an outline
// rather than a topic name.
func looksLikeFragment(title string) bool {
	title = strings.TrimSpace(title)
	if runeLen(title) < 4 || len(meaningfulTokens(title)) == 0 {
		return true
	}
	first, _ := utf8.DecodeRuneInString(title)
	if unicode.IsLower(first) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(title)
	return strings.ContainsRune(":,;-–(", last)
}
