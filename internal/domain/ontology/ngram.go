package ontology

// ngramSize is the character n-gram width of the lexical index. Trigrams are
// the conventional sweet spot for noisy scientific names: short enough to
// survive single-character OCR errors, long enough to keep posting lists
// selective.
const ngramSize = 3

// ngrams returns the padded character trigrams of a normalized string.
// Strings shorter than the n-gram size yield themselves as a single gram so
// short synonyms ("ATP") remain indexable.
func ngrams(s string) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) < ngramSize {
		return []string{s}
	}
	// Leading/trailing pad anchors grams at the word boundaries, which
	// rewards prefix/suffix agreement during candidate recall.
	padded := make([]rune, 0, len(runes)+2)
	padded = append(padded, '\x02')
	padded = append(padded, runes...)
	padded = append(padded, '\x03')

	seen := make(map[string]struct{}, len(padded))
	out := make([]string, 0, len(padded)-ngramSize+1)
	for i := 0; i+ngramSize <= len(padded); i++ {
		g := string(padded[i : i+ngramSize])
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
