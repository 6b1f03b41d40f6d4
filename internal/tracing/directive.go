// Package tracing turns free-text tracing requests ("Trace number 8",
// "Trace alphabet z in cursive") into worksheet directives and renders them.
package tracing

import (
	"errors"
	"fmt"
)

// Kind is what a worksheet asks the child to trace.
type Kind string

const (
	KindLetter Kind = "letter"
	KindNumber Kind = "number"
	KindWord   Kind = "word"
)

func (k Kind) Valid() bool {
	switch k {
	case KindLetter, KindNumber, KindWord:
		return true
	}
	return false
}

// Style is the glyph variant. Numbers and words always carry StyleUppercase.
type Style string

const (
	StyleUppercase Style = "uppercase"
	StyleLowercase Style = "lowercase"
	StyleCursive   Style = "cursive"
)

func (s Style) Valid() bool {
	switch s {
	case StyleUppercase, StyleLowercase, StyleCursive:
		return true
	}
	return false
}

// Directive tells the worksheet renderer what to draw.
type Directive struct {
	Type        Kind   `json:"type"`
	Content     string `json:"content"`
	Style       Style  `json:"style"`
	Description string `json:"description"`
}

func (d Directive) Valid() bool {
	return d.Type.Valid() && d.Style.Valid() && d.Content != ""
}

// Fallback is returned when no rule recognizes the prompt.
var Fallback = Directive{
	Type:        KindLetter,
	Content:     "A",
	Style:       StyleUppercase,
	Description: "Trace the letter A",
}

var ErrInvalidDirective = errors.New("invalid tracing directive")

func letterDirective(letter string, style Style, qualified bool) Directive {
	desc := "Trace the letter " + letter
	if qualified && style != StyleUppercase {
		desc += " in " + string(style)
	}
	return Directive{Type: KindLetter, Content: letter, Style: style, Description: desc}
}

func numberDirective(digits string) Directive {
	return Directive{
		Type:        KindNumber,
		Content:     digits,
		Style:       StyleUppercase,
		Description: "Trace the number " + digits,
	}
}

func wordDirective(word string) Directive {
	return Directive{
		Type:        KindWord,
		Content:     word,
		Style:       StyleUppercase,
		Description: "Trace the word " + word,
	}
}

// NewDirective rebuilds a directive from its wire parts, e.g. the query of a
// worksheet URL. Content must have the shape its kind produces: one ASCII
// letter, a run of digits or a run of ASCII letters. Length is not bounded;
// the renderer scales long content down to fit the page.
func NewDirective(kind Kind, content string, style Style) (Directive, error) {
	if !kind.Valid() || !style.Valid() {
		return Directive{}, ErrInvalidDirective
	}
	switch kind {
	case KindLetter:
		if len(content) != 1 || !isASCIILetter(content[0]) {
			return Directive{}, fmt.Errorf("%w: letter must be one ASCII letter", ErrInvalidDirective)
		}
		return letterDirective(content, style, true), nil
	case KindNumber:
		if content == "" || !allBytes(content, isDigit) {
			return Directive{}, fmt.Errorf("%w: number must be digits", ErrInvalidDirective)
		}
		return numberDirective(content), nil
	default:
		if content == "" || !allBytes(content, isASCIILetter) {
			return Directive{}, fmt.Errorf("%w: word must be ASCII letters", ErrInvalidDirective)
		}
		return wordDirective(content), nil
	}
}

func allBytes(s string, ok func(byte) bool) bool {
	for i := 0; i < len(s); i++ {
		if !ok(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
