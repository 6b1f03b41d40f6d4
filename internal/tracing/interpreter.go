package tracing

import (
	"regexp"
	"strings"
)

// Rule recognizes one phrasing of a tracing request.
type Rule struct {
	Name  string
	Match func(prompt string) (Directive, bool)
}

var (
	letterKeywordRe  = regexp.MustCompile(`(?i:letter|alphabet)\s+([A-Za-z])`)
	numberKeywordRe  = regexp.MustCompile(`(?i:number)\s+(\d+)`)
	wordKeywordRe    = regexp.MustCompile(`(?i:spelling|word)\s+(?i:of)\s+([A-Za-z]+)`)
	letterCursiveRe  = regexp.MustCompile(`(?i:letter|alphabet)\s+([A-Za-z]).*(?i:cursive)`)
	isolatedLetterRe = regexp.MustCompile(`\b([A-Za-z])\b`)
	isolatedNumberRe = regexp.MustCompile(`\b(\d+)\b`)
)

// Rules is evaluated top to bottom; the first match wins. Keyword phrasing
// outranks bare characters, and bare letters outrank bare numbers.
var Rules = []Rule{
	{Name: "letter-keyword", Match: matchLetterKeyword},
	{Name: "number-keyword", Match: captureRule(numberKeywordRe, numberDirective)},
	{Name: "word-keyword", Match: captureRule(wordKeywordRe, wordDirective)},
	{Name: "letter-cursive-trailing", Match: captureRule(letterCursiveRe, func(l string) Directive {
		return letterDirective(l, StyleCursive, true)
	})},
	{Name: "bare-letter", Match: captureRule(isolatedLetterRe, func(l string) Directive {
		return letterDirective(l, caseStyle(l), false)
	})},
	{Name: "bare-number", Match: captureRule(isolatedNumberRe, numberDirective)},
	{Name: "first-token-letter", Match: matchFirstToken},
}

// Interpret never fails: prompts no rule recognizes resolve to Fallback.
func Interpret(prompt string) Directive {
	d, _ := InterpretWithRule(prompt)
	return d
}

// InterpretWithRule also reports which rule produced the directive,
// or "fallback".
func InterpretWithRule(prompt string) (Directive, string) {
	for _, r := range Rules {
		if d, ok := r.Match(prompt); ok {
			return d, r.Name
		}
	}
	return Fallback, "fallback"
}

func matchLetterKeyword(prompt string) (Directive, bool) {
	m := letterKeywordRe.FindStringSubmatch(prompt)
	if m == nil {
		return Directive{}, false
	}
	letter := m[1]
	lower := strings.ToLower(prompt)
	style := StyleUppercase
	switch {
	case strings.Contains(lower, "cursive"):
		style = StyleCursive
	case strings.Contains(lower, "lowercase") || isLower(letter):
		style = StyleLowercase
	}
	return letterDirective(letter, style, true), true
}

// The token must be exactly one byte, so multi-byte runes never qualify.
func matchFirstToken(prompt string) (Directive, bool) {
	first := strings.Split(prompt, " ")[0]
	if len(first) != 1 || !isASCIILetter(first[0]) {
		return Directive{}, false
	}
	return letterDirective(first, StyleUppercase, false), true
}

func captureRule(re *regexp.Regexp, build func(string) Directive) func(string) (Directive, bool) {
	return func(prompt string) (Directive, bool) {
		m := re.FindStringSubmatch(prompt)
		if m == nil {
			return Directive{}, false
		}
		return build(m[1]), true
	}
}

func caseStyle(letter string) Style {
	if isLower(letter) {
		return StyleLowercase
	}
	return StyleUppercase
}

func isLower(s string) bool { return s == strings.ToLower(s) }

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
