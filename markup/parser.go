package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	markupLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "RubyOpen", Pattern: `<ruby>`},
		{Name: "RubyClose", Pattern: `</ruby>`},
		{Name: "RtOpen", Pattern: `<rt>`},
		{Name: "RtClose", Pattern: `</rt>`},
		{Name: "Tag", Pattern: `<[^>]*>`},
		{Name: "Stray", Pattern: `<`},
		{Name: "Char", Pattern: `[^<]`},
	})

	tagTokenType   = mustTokenType("Tag")
	strayTokenType = mustTokenType("Stray")

	documentParser = participle.MustBuild[document](
		participle.Lexer(markupLexer),
	)
)

// ErrInvalidMarkup is returned (wrapped in *MarkupError) for unknown tags and
// malformed ruby spans.
var ErrInvalidMarkup = errors.New("invalid markup")

// MarkupError names the offending tag text and its byte offset in the source.
type MarkupError struct {
	Tag    string
	Offset int
	Reason string
}

func (e *MarkupError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("markup: invalid tag %q at offset %d: %s", e.Tag, e.Offset, e.Reason)
	}
	return fmt.Sprintf("markup: invalid tag %q at offset %d", e.Tag, e.Offset)
}

func (e *MarkupError) Unwrap() error { return ErrInvalidMarkup }

// TokenKind discriminates the scanner output.
type TokenKind int

const (
	Char TokenKind = iota
	RubyOpen
	RubyReading
	RubyClose
)

func (k TokenKind) String() string {
	switch k {
	case Char:
		return "Char"
	case RubyOpen:
		return "RubyOpen"
	case RubyReading:
		return "RubyReading"
	case RubyClose:
		return "RubyClose"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is one scanned unit. Start and End are byte offsets into the scanned
// string; source[:End] is the literal prefix up to and including this token.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// document is the grammar root: a run of plain characters and ruby spans.
type document struct {
	Segments []*segment `parser:"@@*"`
}

type segment struct {
	Ruby *rubySpan `parser:"  @@"`
	Char *charNode `parser:"| @@"`
}

type charNode struct {
	Pos   lexer.Position
	Value string `parser:"@Char"`
}

type rubyOpenTag struct {
	Pos   lexer.Position
	Value string `parser:"@RubyOpen"`
}

type rtOpenTag struct {
	Pos   lexer.Position
	Value string `parser:"@RtOpen"`
}

type rtCloseTag struct {
	Pos   lexer.Position
	Value string `parser:"@RtClose"`
}

type rubyCloseTag struct {
	Pos   lexer.Position
	Value string `parser:"@RubyClose"`
}

// rubySpan is <ruby>TARGET<rt>READING</rt></ruby>.
type rubySpan struct {
	Open       *rubyOpenTag  `parser:"@@"`
	Target     []*charNode   `parser:"@@*"`
	ReadingTag *rtOpenTag    `parser:"@@"`
	Reading    []*charNode   `parser:"@@*"`
	RtClose    *rtCloseTag   `parser:"@@"`
	Close      *rubyCloseTag `parser:"@@"`
}

// Scan converts annotated text into a token stream in document order.
func Scan(text string) ([]Token, error) {
	if text == "" {
		return nil, nil
	}
	if err := validateTags(text); err != nil {
		return nil, err
	}
	doc, err := documentParser.ParseString("", text)
	if err != nil {
		return nil, structuralError(text, err)
	}

	tokens := make([]Token, 0, len(text))
	for _, seg := range doc.Segments {
		switch {
		case seg.Char != nil:
			tokens = append(tokens, charToken(seg.Char))
		case seg.Ruby != nil:
			tokens = appendRuby(tokens, seg.Ruby)
		}
	}
	return tokens, nil
}

func appendRuby(tokens []Token, span *rubySpan) []Token {
	target := joinChars(span.Target)
	reading := joinChars(span.Reading)

	openStart := span.Open.Pos.Offset
	tokens = append(tokens, Token{
		Kind:  RubyOpen,
		Text:  target,
		Start: openStart,
		End:   openStart + len(span.Open.Value),
	})
	for _, c := range span.Target {
		tokens = append(tokens, charToken(c))
	}
	tokens = append(tokens, Token{
		Kind:  RubyReading,
		Text:  reading,
		Start: span.ReadingTag.Pos.Offset,
		End:   span.RtClose.Pos.Offset,
	})
	closeStart := span.Close.Pos.Offset
	return append(tokens, Token{
		Kind:  RubyClose,
		Start: span.RtClose.Pos.Offset,
		End:   closeStart + len(span.Close.Value),
	})
}

func charToken(c *charNode) Token {
	return Token{
		Kind:  Char,
		Text:  c.Value,
		Start: c.Pos.Offset,
		End:   c.Pos.Offset + len(c.Value),
	}
}

func joinChars(chars []*charNode) string {
	var b strings.Builder
	for _, c := range chars {
		b.WriteString(c.Value)
	}
	return b.String()
}

// validateTags rejects any tag outside the fixed ruby grammar before parsing,
// so the error names the tag itself rather than a grammar expectation.
func validateTags(text string) error {
	lex, err := markupLexer.LexString("", text)
	if err != nil {
		return &MarkupError{Tag: text, Reason: err.Error()}
	}
	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		return &MarkupError{Tag: text, Reason: err.Error()}
	}
	for _, tok := range toks {
		switch tok.Type {
		case tagTokenType:
			return &MarkupError{Tag: tok.Value, Offset: tok.Pos.Offset}
		case strayTokenType:
			return &MarkupError{Tag: tok.Value, Offset: tok.Pos.Offset, Reason: "unterminated tag"}
		}
	}
	return nil
}

func structuralError(text string, err error) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return &MarkupError{Reason: err.Error()}
	}
	offset := perr.Position().Offset
	return &MarkupError{
		Tag:    tagAt(text, offset),
		Offset: offset,
		Reason: perr.Message(),
	}
}

// tagAt returns the tag (or single character) starting at offset.
func tagAt(text string, offset int) string {
	if offset < 0 || offset >= len(text) {
		return ""
	}
	rest := text[offset:]
	if strings.HasPrefix(rest, "<") {
		if end := strings.IndexByte(rest, '>'); end != -1 {
			return rest[:end+1]
		}
	}
	for _, r := range rest {
		return string(r)
	}
	return ""
}

func mustTokenType(name string) lexer.TokenType {
	symbols := markupLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
