// Package prompts holds the suggestion lists shown next to the prompt box and
// the templates that expand a parent's short prompt for the image model.
package prompts

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Kind string

const (
	KindColoring   Kind = "coloring"
	KindTracing    Kind = "tracing"
	KindFlashcards Kind = "flashcards"
	KindLetters    Kind = "letters"
)

// DefaultRandomCount is how many shuffled prompts flashcards/letters return
// when the caller does not ask for a count.
const DefaultRandomCount = 4

type Template struct {
	Category string   `yaml:"category" json:"category"`
	Prompt   string   `yaml:"prompt" json:"prompt"`
	Template string   `yaml:"template" json:"promptTemplate"`
	Simple   []string `yaml:"simple" json:"simplePrompts"`
}

type Catalog struct {
	Coloring  []string   `yaml:"coloring"`
	Tracing   []string   `yaml:"tracing"`
	Templates []Template `yaml:"templates"`
	Enhance   struct {
		Coloring string `yaml:"coloring"`
	} `yaml:"enhance"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	if len(c.Coloring) == 0 || len(c.Tracing) == 0 {
		return nil, fmt.Errorf("prompt catalog missing coloring or tracing suggestions")
	}
	if !strings.Contains(c.Enhance.Coloring, "%s") {
		return nil, fmt.Errorf("prompt catalog coloring enhance template needs a %%s placeholder")
	}
	return &c, nil
}

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindColoring, KindTracing, KindFlashcards, KindLetters:
		return k, true
	}
	return "", false
}

// Suggestions returns prompts for kind. Coloring and tracing lists keep their
// order; flashcards and letters are shuffled simple prompts. count <= 0 means
// the whole list for ordered kinds and DefaultRandomCount for shuffled ones.
func (c *Catalog) Suggestions(kind Kind, count int, rng *rand.Rand) []string {
	switch kind {
	case KindColoring:
		return head(c.Coloring, count)
	case KindTracing:
		return head(c.Tracing, count)
	case KindFlashcards, KindLetters:
		if count <= 0 {
			count = DefaultRandomCount
		}
		pool := c.simplePrompts(categoryFor(kind))
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		return head(pool, count)
	}
	return nil
}

func (c *Catalog) TemplatesFor(kind Kind) []Template {
	cat := categoryFor(kind)
	var out []Template
	for _, t := range c.Templates {
		if strings.EqualFold(t.Category, cat) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Catalog) EnhanceColoring(prompt string) string {
	return fmt.Sprintf(c.Enhance.Coloring, strings.TrimSpace(prompt))
}

func (c *Catalog) simplePrompts(category string) []string {
	var out []string
	for _, t := range c.Templates {
		if strings.EqualFold(t.Category, category) {
			out = append(out, t.Simple...)
		}
	}
	return out
}

func categoryFor(kind Kind) string {
	switch kind {
	case KindFlashcards:
		return "FlashCards"
	case KindLetters:
		return "Letters"
	}
	return ""
}

func head(list []string, n int) []string {
	if n <= 0 || n > len(list) {
		n = len(list)
	}
	out := make([]string, n)
	copy(out, list[:n])
	return out
}
