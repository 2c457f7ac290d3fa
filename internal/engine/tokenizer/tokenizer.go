// Package tokenizer breaks free text into index terms. Input is lowercased
// and split into maximal runs of Latin letters, digits, and CJK characters;
// every other character is a separator. Each CJK run additionally yields its
// individual characters and adjacent character pairs as extra terms, so
// Chinese text is searchable without dictionary-based word segmentation: any
// query of two or more CJK characters matches through bigram overlap.
//
// There is no stop-word removal and no stemming.
package tokenizer

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z0-9\x{4e00}-\x{9fa5}]+`)

// Tokenize returns the index terms for text, or nil if the text contains no
// indexable characters.
func Tokenize(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		tokens = append(tokens, word)
		tokens = appendCJKGrams(tokens, word)
	}
	return tokens
}

func isCJK(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fa5
}

// appendCJKGrams appends unigram and bigram terms for every maximal CJK run
// inside word.
func appendCJKGrams(tokens []string, word string) []string {
	runes := []rune(word)
	start := -1
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && isCJK(runes[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			run := runes[start:i]
			for _, r := range run {
				tokens = append(tokens, string(r))
			}
			for j := 0; j+1 < len(run); j++ {
				tokens = append(tokens, string(run[j:j+2]))
			}
			start = -1
		}
	}
	return tokens
}
