package plotting

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gopkg.in/yaml.v3"
)

// Style controls figure geometry and text sizing, the role a matplotlib
// style sheet plays for the reference implementation. Zero fields are
// filled from the defaults, so a style file only needs to override what
// it changes.
type Style struct {
	FigWidth   int     `yaml:"fig_width"`
	FigHeight  int     `yaml:"fig_height"`
	FontSize   float64 `yaml:"font_size"`
	TitleSize  float64 `yaml:"title_size"`
	LineWidth  float64 `yaml:"line_width"`
	MarkerSize float64 `yaml:"marker_size"`
	// Colormap is the default color scheme; Options.Colormap wins.
	Colormap string `yaml:"colormap"`
}

// DefaultStyle returns the built-in plot style.
func DefaultStyle() *Style {
	return &Style{
		FigWidth:   900,
		FigHeight:  650,
		FontSize:   12,
		TitleSize:  14.5,
		LineWidth:  2.4,
		MarkerSize: 5,
		Colormap:   "Dark2",
	}
}

// LoadStyle reads a YAML style file and fills missing values with
// defaults. An empty path returns the defaults.
func LoadStyle(path string) (*Style, error) {
	if path == "" {
		return DefaultStyle(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style: %w", err)
	}
	var s Style
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse style: %w", err)
	}
	s.applyDefaults()
	return &s, nil
}

func (s *Style) applyDefaults() {
	def := DefaultStyle()
	if s.FigWidth <= 0 {
		s.FigWidth = def.FigWidth
	}
	if s.FigHeight <= 0 {
		s.FigHeight = def.FigHeight
	}
	if s.FontSize <= 0 {
		s.FontSize = def.FontSize
	}
	if s.TitleSize <= 0 {
		s.TitleSize = def.TitleSize
	}
	if s.LineWidth <= 0 {
		s.LineWidth = def.LineWidth
	}
	if s.MarkerSize <= 0 {
		s.MarkerSize = def.MarkerSize
	}
	if s.Colormap == "" {
		s.Colormap = def.Colormap
	}
}

// palettes are the matplotlib qualitative schemes the reference figures
// use, as go-chart drawing colors.
var palettes = map[string][]drawing.Color{
	"Dark2": hexPalette("1b9e77", "d95f02", "7570b3", "e7298a", "66a61e", "e6ab02", "a6761d", "666666"),
	"tab10": hexPalette("1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd", "8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf"),
	"tab20": hexPalette(
		"1f77b4", "aec7e8", "ff7f0e", "ffbb78", "2ca02c", "98df8a", "d62728", "ff9896", "9467bd", "c5b0d5",
		"8c564b", "c49c94", "e377c2", "f7b6d2", "7f7f7f", "c7c7c7", "bcbd22", "dbdb8d", "17becf", "9edae5"),
}

func hexPalette(hexes ...string) []drawing.Color {
	out := make([]drawing.Color, len(hexes))
	for i, h := range hexes {
		out[i] = drawing.ColorFromHex(h)
	}
	return out
}

// paletteColors returns n line colors from the named scheme, wrapping
// around when the scheme has fewer distinct colors than requested.
func paletteColors(name string, n int) ([]drawing.Color, error) {
	base, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q (have Dark2, tab10, tab20)", name)
	}
	out := make([]drawing.Color, n)
	for i := range out {
		out[i] = base[i%len(base)]
	}
	return out, nil
}

// paletteSize returns the number of distinct colors in the named scheme.
func paletteSize(name string) int {
	return len(palettes[name])
}
