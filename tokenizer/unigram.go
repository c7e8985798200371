package tokenizer

const negInf = -1e9

// Encode tokenizes text into HuggingFace-convention token IDs using the
// Viterbi algorithm over the unigram lexicon. Special tokens are not added;
// callers frame the sequence themselves.
func (t *Tokenizer) Encode(text string) []int32 {
	if text == "" {
		return nil
	}

	normalized := normalize(text)
	if normalized == "" {
		return nil
	}

	runes := []rune(normalized)
	n := len(runes)

	// best[i] = best log probability to tokenize runes[0:i]
	best := make([]float64, n+1)
	// parent[i] = start position of the token ending at position i
	parent := make([]int, n+1)
	// tokenAt[i] = the token string ending at position i
	tokenAt := make([]string, n+1)

	for i := 1; i <= n; i++ {
		best[i] = negInf
		parent[i] = -1
	}

	for i := 1; i <= n; i++ {
		maxLen := t.maxTokenLen
		if maxLen > i {
			maxLen = i
		}

		for length := 1; length <= maxLen; length++ {
			j := i - length
			substr := string(runes[j:i])

			score, ok := t.scores[substr]
			if !ok {
				continue
			}

			candidate := best[j] + float64(score)
			if candidate > best[i] {
				best[i] = candidate
				parent[i] = j
				tokenAt[i] = substr
			}
		}

		// No piece ends here: fall back to a single unknown character.
		if best[i] == negInf {
			best[i] = best[i-1] + float64(t.unkScore)
			parent[i] = i - 1
			tokenAt[i] = string(runes[i-1 : i])
		}
	}

	// Backtrack, then reverse into input order.
	ids := make([]int32, 0, n)
	for pos := n; pos > 0; pos = parent[pos] {
		spIndex, ok := t.pieces[tokenAt[pos]]
		if !ok {
			spIndex = spUnknown
		}
		ids = append(ids, t.spIndexToHFID(spIndex))
	}

	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	return ids
}
