package main

import (
	"image"
	"testing"
)

func TestChartSizeFallback(t *testing.T) {
	w, h := chartSize(nil)
	if w != 900 || h != 600 {
		t.Errorf("nil state should use the fallback size, got %dx%d", w, h)
	}
}

func TestBlankImageSize(t *testing.T) {
	img := blank(320, 200)
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("blank image bounds = %v", b)
	}
}

func TestDrawHintOverlaysText(t *testing.T) {
	base := blank(300, 120)
	out := drawHint(base, "hello")
	if out == base {
		t.Fatalf("drawHint should return a new image with the overlay")
	}
	if out.Bounds() != base.Bounds() {
		t.Errorf("overlay must preserve bounds")
	}
	// the dark hint background should change at least one pixel
	changed := false
	rgba := out.(*image.RGBA)
	for x := 0; x < 60 && !changed; x++ {
		for y := 100; y < 120 && !changed; y++ {
			r1, g1, b1, _ := base.At(x, y).RGBA()
			r2, g2, b2, _ := rgba.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 {
				changed = true
			}
		}
	}
	if !changed {
		t.Errorf("expected hint pixels to differ from the blank background")
	}
}

func TestDrawHintEmptyTextNoop(t *testing.T) {
	base := blank(100, 50)
	if out := drawHint(base, "   "); out != base {
		t.Errorf("whitespace-only hints should be a no-op")
	}
}
