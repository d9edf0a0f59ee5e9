package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults holds user defaults for the plot command, read from a
// defectplot.toml next to the working directory or under the home
// directory. Flags always win over file values.
type Defaults struct {
	Plot PlotDefaults `toml:"plot"`
}

// PlotDefaults mirrors the [plot] section.
type PlotDefaults struct {
	Colormap     string `toml:"colormap"`
	Style        string `toml:"style"`
	Entries      string `toml:"entries"`
	ChempotTable *bool  `toml:"chempot_table"`
	AutoLabels   *bool  `toml:"auto_labels"`
}

// defaultsPaths lists candidate config locations, nearest first.
func defaultsPaths() []string {
	paths := []string{"defectplot.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".defectplot.toml"))
	}
	return paths
}

// LoadDefaults reads the first defaults file that exists. A missing file
// is not an error; a malformed one is.
func LoadDefaults(paths ...string) (*Defaults, error) {
	if len(paths) == 0 {
		paths = defaultsPaths()
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var d Defaults
		if _, err := toml.DecodeFile(path, &d); err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		return &d, nil
	}
	return &Defaults{}, nil
}
