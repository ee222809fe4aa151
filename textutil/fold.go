// Package textutil holds the string normalizers shared by documents, outlines
// and citations: slugs, diacritic folding, tag lists and calendar dates
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// đ/Đ is a distinct letter, not a base letter plus a mark, so NFD keeps it
var dStroke = strings.NewReplacer("đ", "d", "Đ", "D")

// StripDiacritics removes combining marks after NFD decomposition and maps
// đ/Đ to d/D
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return dStroke.Replace(out)
}

// Slugify lowercases s, strips diacritics, joins alphanumeric runs with
// single hyphens and trims hyphens at both ends
func Slugify(s string) string {
	s = StripDiacritics(strings.ToLower(s))
	s = nonSlugRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CollapseSpaces replaces whitespace runs with one space and trims
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// FoldForMatch is the comparison form used for statute numbers and excerpt
// lookup: uppercase, no diacritics, Đ as D, collapsed whitespace
func FoldForMatch(s string) string {
	return CollapseSpaces(StripDiacritics(strings.ToUpper(s)))
}

// FoldForIndex is the lowercase variant fed to the search index
func FoldForIndex(s string) string {
	return CollapseSpaces(StripDiacritics(strings.ToLower(s)))
}

// FoldRune folds a single rune the way FoldForMatch does, keeping a
// one-to-one rune mapping so offsets in the folded text stay valid in the
// source text
func FoldRune(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	r = unicode.ToUpper(r)
	if r == 'Đ' {
		return 'D'
	}
	if r < utf8.RuneSelf {
		return r
	}
	base, _ := utf8.DecodeRuneInString(norm.NFD.String(string(r)))
	if base == utf8.RuneError {
		return r
	}
	return base
}
