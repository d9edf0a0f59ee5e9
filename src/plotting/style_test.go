package plotting

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStyleEmptyPathUsesDefaults(t *testing.T) {
	s, err := LoadStyle("")
	if err != nil {
		t.Fatalf("LoadStyle: %v", err)
	}
	if s.FigWidth != 900 || s.Colormap != "Dark2" {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestLoadStylePartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.yaml")
	if err := os.WriteFile(path, []byte("fig_width: 1200\ncolormap: tab10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadStyle(path)
	if err != nil {
		t.Fatalf("LoadStyle: %v", err)
	}
	if s.FigWidth != 1200 {
		t.Errorf("override lost: %d", s.FigWidth)
	}
	if s.Colormap != "tab10" {
		t.Errorf("override lost: %s", s.Colormap)
	}
	if s.FontSize != 12 {
		t.Errorf("missing values should fall back to defaults, got %v", s.FontSize)
	}
}

func TestLoadStyleMissingFile(t *testing.T) {
	if _, err := LoadStyle("/nonexistent/style.yaml"); err == nil {
		t.Fatalf("expected an error for a missing style file")
	}
}

func TestPaletteColorsWrap(t *testing.T) {
	colors, err := paletteColors("Dark2", 10)
	if err != nil {
		t.Fatalf("paletteColors: %v", err)
	}
	if len(colors) != 10 {
		t.Fatalf("expected 10 colors, got %d", len(colors))
	}
	if colors[8] != colors[0] || colors[9] != colors[1] {
		t.Errorf("expected wrap-around past the 8 distinct Dark2 colors")
	}
}

func TestPaletteColorsUnknown(t *testing.T) {
	if _, err := paletteColors("viridis", 3); err == nil {
		t.Fatalf("expected an error for an unknown scheme")
	}
	if paletteSize("viridis") != 0 {
		t.Errorf("unknown schemes have size 0")
	}
}

func TestPaletteSizes(t *testing.T) {
	for name, want := range map[string]int{"Dark2": 8, "tab10": 10, "tab20": 20} {
		if got := paletteSize(name); got != want {
			t.Errorf("paletteSize(%s) = %d, want %d", name, got, want)
		}
	}
}
