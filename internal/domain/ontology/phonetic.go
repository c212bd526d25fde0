package ontology

import "strings"

// soundexCodes maps consonants to their Soundex digit. Vowels, h, w, and y
// code to zero and act as separators.
var soundexCodes = map[rune]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// phoneticKey produces a Soundex-style key per whitespace token of an
// already-normalized string, joined by spaces. It is the last-resort recall
// channel for OCR and transliteration noise ("kwersetin" → "quercetin");
// precision is deliberately low because phonetic candidates are re-scored
// lexically before they can win.
func phoneticKey(s string) string {
	tokens := Tokenize(s)
	keys := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if k := soundexToken(tok); k != "" {
			keys = append(keys, k)
		}
	}
	return strings.Join(keys, " ")
}

func soundexToken(tok string) string {
	runes := []rune(tok)
	if len(runes) == 0 {
		return ""
	}
	first := runes[0]
	if first < 'a' || first > 'z' {
		// Numeric or symbolic tokens carry no phonetic signal.
		return tok
	}

	key := make([]byte, 0, 4)
	key = append(key, byte(first))
	var prev byte
	if c, ok := soundexCodes[first]; ok {
		prev = c
	}
	for _, r := range runes[1:] {
		c, ok := soundexCodes[r]
		if !ok {
			// Vowel-class rune: breaks a run of identical codes.
			prev = 0
			continue
		}
		if c == prev {
			continue
		}
		key = append(key, c)
		prev = c
		if len(key) == 4 {
			break
		}
	}
	for len(key) < 4 {
		key = append(key, '0')
	}
	return string(key)
}
