package tracing

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
)

func newTestWorksheet(t *testing.T) *Worksheet {
	t.Helper()
	ws, err := NewWorksheet()
	if err != nil {
		t.Fatalf("NewWorksheet: %v", err)
	}
	return ws
}

func TestWorksheetRenderDrawsGuide(t *testing.T) {
	ws := newTestWorksheet(t)

	img, err := ws.Render(Interpret("Trace Alphabet A"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != pageWidth || b.Dy() != pageHeight {
		t.Fatalf("unexpected page size %v", b)
	}
	if n := countNonWhite(img, image.Rect(pageMargin, 130, pageWidth-pageMargin, 560)); n == 0 {
		t.Fatalf("guide area is blank")
	}
}

func TestWorksheetLongWordFits(t *testing.T) {
	ws := newTestWorksheet(t)
	img, err := ws.Render(Interpret("Spelling of Supercalifragilistic"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	left := countNonWhite(img, image.Rect(0, 130, pageMargin-5, 560))
	right := countNonWhite(img, image.Rect(pageWidth-pageMargin+5, 130, pageWidth, 560))
	if left != 0 || right != 0 {
		t.Fatalf("guide glyphs spilled into margins: left=%d right=%d", left, right)
	}
}

func TestWorksheetVeryLongContentStillPractices(t *testing.T) {
	ws := newTestWorksheet(t)
	for _, prompt := range []string{
		"Spelling of Supercalifragilisticexpialidocious",
		"Trace number 1234567890123",
	} {
		img, err := ws.Render(Interpret(prompt))
		if err != nil {
			t.Fatalf("Render(%q): %v", prompt, err)
		}
		// Between the first practice row's midline and baseline only glyphs are drawn.
		if n := countNonWhite(img, image.Rect(pageMargin+10, 668, pageWidth-pageMargin-10, 706)); n == 0 {
			t.Fatalf("Render(%q): practice row has no glyphs", prompt)
		}
		left := countNonWhite(img, image.Rect(0, 0, pageMargin-5, pageHeight))
		if left != 0 {
			t.Fatalf("Render(%q): %d pixels in the left margin", prompt, left)
		}
	}
}

func TestWorksheetEncodePNG(t *testing.T) {
	ws := newTestWorksheet(t)

	var buf bytes.Buffer
	if err := ws.EncodePNG(&buf, Interpret("Trace alphabet z in cursive")); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
}

func TestWorksheetRejectsInvalidDirective(t *testing.T) {
	ws := newTestWorksheet(t)
	_, err := ws.Render(Directive{Type: KindNumber, Style: StyleUppercase})
	if !errors.Is(err, ErrInvalidDirective) {
		t.Fatalf("expected ErrInvalidDirective, got %v", err)
	}
}

func TestWorksheetConcurrentRenders(t *testing.T) {
	ws := newTestWorksheet(t)
	prompts := []string{"Trace number 8", "Trace letter g", "Spelling of One", "Trace alphabet z in cursive"}

	var wg sync.WaitGroup
	errs := make(chan error, len(prompts))
	for _, p := range prompts {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, err := ws.Render(Interpret(p))
			errs <- err
		}(p)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
}

func countNonWhite(img image.Image, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr < 0xf000 || cg < 0xf000 || cb < 0xf000 {
				n++
			}
		}
	}
	return n
}
