// Package runeio provides the Unicode rune decoding and classification
// primitives shared by the tokenizer, set expander, and parser.
//
// Patterns are decoded once into a []rune up front so that every later
// phase can address pattern positions as rune offsets rather than byte
// offsets — error positions reported by the parser are rune offsets,
// matching the original rejit contract where Rune* arithmetic was
// always in units of whole code points.
package runeio

import "unicode"

// Decode converts a pattern string into its rune sequence. Invalid
// UTF-8 is decoded byte-by-byte into the Unicode replacement character
// by range's default behavior, matching Go's usual "for range string"
// semantics rather than rejecting the input outright.
func Decode(pattern string) []rune {
	return []rune(pattern)
}

// IsDigit reports whether r is an ASCII decimal digit.
func IsDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsUpper reports whether r is an uppercase letter.
func IsUpper(r rune) bool {
	return unicode.IsUpper(r)
}

// ToLower folds r to lowercase using simple Unicode case folding.
func ToLower(r rune) rune {
	return unicode.ToLower(r)
}

// ToUpper folds r to uppercase using simple Unicode case folding.
func ToUpper(r rune) rune {
	return unicode.ToUpper(r)
}

// RuneASCIIMax is the highest single-byte UTF-8 code point (see
// match.c's genmagic, which only inspects runes <= RUNE1). It bounds
// FoldEquivalents' ASCII-only case folding, and jit/refvm's \w treats
// every rune above it as a word character. Neither the set expander
// nor package prefilter consults it.
const RuneASCIIMax = (1 << 7) - 1

// FoldEquivalents returns the case-fold equivalents of r worth trying
// during an ASCII-only literal acceleration pass: r itself, plus its
// opposite-case counterpart when r is an ASCII letter. For non-ASCII
// or non-letter runes, only r is returned.
func FoldEquivalents(r rune) []rune {
	if r > RuneASCIIMax {
		return []rune{r}
	}
	lower := unicode.ToLower(r)
	upper := unicode.ToUpper(r)
	if lower == upper {
		return []rune{r}
	}
	if lower == r {
		return []rune{lower, upper}
	}
	return []rune{upper, lower}
}
