package markup

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	rubyPattern     = regexp.MustCompile(`<ruby>(.*?)<rt>.*?</rt></ruby>`)
	sentencePattern = regexp.MustCompile(`[^。！？!?]+[。！？!?]`)
	readingPattern  = regexp.MustCompile(`<rt>(.*?)</rt>`)
)

const (
	hiraganaFirst = 0x3041
	hiraganaLast  = 0x3096
	katakanaFirst = 0x30A1
)

// HasRuby reports whether text carries at least one ruby span.
func HasRuby(text string) bool {
	return strings.Contains(text, "<ruby>")
}

// RemoveRubyTags replaces every <ruby>X<rt>Y</rt></ruby> span with its target X.
func RemoveRubyTags(text string) string {
	return rubyPattern.ReplaceAllString(text, "$1")
}

// SplitSentences cuts text after each sentence terminator. Text without any
// terminator is returned whole; a trailing unterminated fragment is dropped.
func SplitSentences(text string) []string {
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}

// ToKatakana maps hiragana to the corresponding katakana, leaving other runes.
func ToKatakana(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= hiraganaFirst && r <= hiraganaLast {
			return r - hiraganaFirst + katakanaFirst
		}
		return r
	}, text)
}

// KatakanaReadings rewrites only the ruby readings of text in katakana.
func KatakanaReadings(text string) string {
	return readingPattern.ReplaceAllStringFunc(text, func(span string) string {
		inner := strings.TrimSuffix(strings.TrimPrefix(span, "<rt>"), "</rt>")
		return "<rt>" + ToKatakana(inner) + "</rt>"
	})
}

// Normalize returns the NFC form of text, so composed kana such as が are a
// single rune before scanning.
func Normalize(text string) string {
	return norm.NFC.String(text)
}
