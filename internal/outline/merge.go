package outline

// mergeTopics runs the similarity pass, the minimum-size pass and the
// similarity pass again, then enforces maxTopics.
func mergeTopics(topics []Topic, opts Options, maxTopics int) []Topic {
	topics = similarityPass(topics, opts)
	topics = sizePass(topics, opts)
	topics = similarityPass(topics, opts)
	if maxTopics > 0 {
		topics = capTopics(topics, opts, maxTopics)
	}
	return topics
}

// similar compares adjacent topics by title tokens and keyword sets.
// Keyword similarity only counts when both sides have at least four.
func similar(a, b Topic, threshold float64) bool {
	titleSim := jaccard(tokenSet(meaningfulTokens(a.Title)), tokenSet(meaningfulTokens(b.Title)))
	kwSim := 0.0
	if len(a.Keywords) >= 4 && len(b.Keywords) >= 4 {
		kwSim = jaccard(tokenSet(a.Keywords), tokenSet(b.Keywords))
	}
	return max(titleSim, kwSim) >= threshold
}

func similarityPass(topics []Topic, opts Options) []Topic {
	for i := 0; i+1 < len(topics); {
		if !similar(topics[i], topics[i+1], opts.MergeSimilarity) {
			i++
			continue
		}
		topics[i] = absorb(topics[i], topics[i+1], opts.MaxKeywords, false, false)
		topics = append(topics[:i+1], topics[i+2:]...)
	}
	return topics
}

// sizePass merges every undersized topic into the next one, or into the
// previous one when it is last, until none is left or one topic remains.
func sizePass(topics []Topic, opts Options) []Topic {
	for len(topics) > 1 {
		i := -1
		for j, t := range topics {
			if runeLen(t.Body) < opts.MinBodyLength {
				i = j
				break
			}
		}
		if i < 0 {
			break
		}
		topics = mergeInto(topics, i, i+1 < len(topics), opts.MaxKeywords)
	}
	return topics
}

// capTopics merges the smallest topic into its smaller neighbour until at
// most limit topics remain.
func capTopics(topics []Topic, opts Options, limit int) []Topic {
	for len(topics) > limit && len(topics) > 1 {
		small := 0
		for j, t := range topics {
			if runeLen(t.Body) < runeLen(topics[small].Body) {
				small = j
			}
		}
		toNext := small == 0
		if small > 0 && small+1 < len(topics) {
			toNext = runeLen(topics[small+1].Body) < runeLen(topics[small-1].Body)
		}
		topics = mergeInto(topics, small, toNext, opts.MaxKeywords)
	}
	return topics
}

// mergeInto folds topics[i] into its next (prepended as a labeled
// sub-section) or previous (appended) neighbour and removes it.
func mergeInto(topics []Topic, i int, toNext bool, maxKw int) []Topic {
	if toNext {
		topics[i+1] = absorb(topics[i+1], topics[i], maxKw, true, true)
	} else {
		topics[i-1] = absorb(topics[i-1], topics[i], maxKw, false, true)
	}
	return append(topics[:i], topics[i+1:]...)
}

// absorb merges other into t, keeping t's title. With prepend, other's
// content goes before t's body; withTitle keeps other's title as a
// sub-section heading.
func absorb(t, other Topic, maxKw int, prepend, withTitle bool) Topic {
	section := other.Body
	if withTitle && other.Title != "" {
		section = other.Title + "\n" + other.Body
	}
	if prepend {
		t.Body = section + "\n\n" + t.Body
	} else {
		t.Body = t.Body + "\n\n" + section
	}
	t.Keywords = unionKeywords(maxKw, t.Keywords, other.Keywords)
	t.StartChunk = minPtr(t.StartChunk, other.StartChunk)
	t.EndChunk = maxPtr(t.EndChunk, other.EndChunk)
	t.TextOnly = t.StartChunk == nil && (t.TextOnly || other.TextOnly)
	t.IsAppendix = t.IsAppendix && other.IsAppendix
	return t
}

func minPtr(a, b *int) *int {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b < *a:
		return intPtr(*b)
	}
	return intPtr(*a)
}

func maxPtr(a, b *int) *int {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b > *a:
		return intPtr(*b)
	}
	return intPtr(*a)
}
