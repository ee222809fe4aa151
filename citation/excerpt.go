package citation

import (
	"strings"
	"unicode/utf8"

	"chatiip-backend/textutil"
)

// DefaultExcerptLength is the excerpt window in characters
const DefaultExcerptLength = 220

// Excerpt returns a window of at most maxLen characters of text. When needle
// occurs in text (compared in folded form) the window starts maxLen/3
// characters before the match and its whitespace is collapsed. Otherwise a
// plain prefix of text is returned
func Excerpt(text, needle string, maxLen int) string {
	if text == "" || maxLen <= 0 {
		return ""
	}
	src := []rune(text)

	foldedNeedle := []rune(textutil.FoldForMatch(needle))
	if len(foldedNeedle) == 0 {
		return prefix(src, maxLen)
	}

	folded := make([]rune, len(src))
	for i, r := range src {
		folded[i] = textutil.FoldRune(r)
	}
	idx := indexRunes(folded, foldedNeedle)
	if idx < 0 {
		return prefix(src, maxLen)
	}

	start := idx - maxLen/3
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(src) {
		end = len(src)
	}
	return textutil.CollapseSpaces(string(src[start:end]))
}

func prefix(src []rune, n int) string {
	if len(src) > n {
		src = src[:n]
	}
	return string(src)
}

// indexRunes returns the rune offset of needle in haystack, or -1
func indexRunes(haystack, needle []rune) int {
	h := string(haystack)
	at := strings.Index(h, string(needle))
	if at < 0 {
		return -1
	}
	return utf8.RuneCountInString(h[:at])
}
