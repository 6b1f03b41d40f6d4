package tracing

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDirective(t *testing.T) {
	cases := []struct {
		kind    Kind
		content string
		style   Style
		want    Directive
	}{
		{KindLetter, "b", StyleLowercase, Directive{KindLetter, "b", StyleLowercase, "Trace the letter b in lowercase"}},
		{KindLetter, "Q", StyleCursive, Directive{KindLetter, "Q", StyleCursive, "Trace the letter Q in cursive"}},
		{KindLetter, "Q", StyleUppercase, Directive{KindLetter, "Q", StyleUppercase, "Trace the letter Q"}},
		{KindNumber, "024", StyleUppercase, Directive{KindNumber, "024", StyleUppercase, "Trace the number 024"}},
		{KindWord, "Kiwi", StyleUppercase, Directive{KindWord, "Kiwi", StyleUppercase, "Trace the word Kiwi"}},
		{KindNumber, "1234567890123", StyleUppercase, Directive{KindNumber, "1234567890123", StyleUppercase, "Trace the number 1234567890123"}},
		{KindWord, "Supercalifragilisticexpialidocious", StyleUppercase, Directive{KindWord, "Supercalifragilisticexpialidocious", StyleUppercase, "Trace the word Supercalifragilisticexpialidocious"}},
	}
	for _, tc := range cases {
		got, err := NewDirective(tc.kind, tc.content, tc.style)
		if err != nil {
			t.Fatalf("NewDirective(%q, %q, %q): %v", tc.kind, tc.content, tc.style, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("NewDirective(%q, %q, %q) mismatch (-want +got):\n%s", tc.kind, tc.content, tc.style, diff)
		}
	}
}

func TestNewDirectiveRejects(t *testing.T) {
	cases := []struct {
		kind    Kind
		content string
		style   Style
	}{
		{"shape", "A", StyleUppercase},
		{KindLetter, "A", "bold"},
		{KindLetter, "AB", StyleUppercase},
		{KindLetter, "7", StyleUppercase},
		{KindLetter, "é", StyleUppercase},
		{KindNumber, "", StyleUppercase},
		{KindNumber, "12a", StyleUppercase},
		{KindWord, "two words", StyleUppercase},
		{KindWord, "kiwi7", StyleUppercase},
	}
	for _, tc := range cases {
		if _, err := NewDirective(tc.kind, tc.content, tc.style); !errors.Is(err, ErrInvalidDirective) {
			t.Errorf("NewDirective(%q, %q, %q): want ErrInvalidDirective, got %v", tc.kind, tc.content, tc.style, err)
		}
	}
}
