package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"defectplot/src/defectdata"
	"defectplot/src/plotting"
)

func plotCmd() *cobra.Command {
	var (
		chempotsPath string
		facets       []string
		entries      string
		stylePath    string
		xlimStr      string
		ylimStr      string
		fermiStr     string
		colormap     string
		autoLabels   bool
		noTable      bool
		output       string
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the formation energy diagram to a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDiagram(); err != nil {
				return err
			}
			d, err := defectdata.LoadDiagram(diagramPath)
			if err != nil {
				return err
			}

			defaults, err := LoadDefaults()
			if err != nil {
				return err
			}
			applyDefault := func(flag string, target *string, value string) {
				if !cmd.Flags().Changed(flag) && value != "" {
					*target = value
				}
			}
			applyDefault("colormap", &colormap, defaults.Plot.Colormap)
			applyDefault("style", &stylePath, defaults.Plot.Style)
			applyDefault("entries", &entries, defaults.Plot.Entries)
			if !cmd.Flags().Changed("auto-labels") && defaults.Plot.AutoLabels != nil {
				autoLabels = *defaults.Plot.AutoLabels
			}
			if !cmd.Flags().Changed("no-chempot-table") && defaults.Plot.ChempotTable != nil {
				noTable = !*defaults.Plot.ChempotTable
			}

			mode, err := plotting.ParseEntriesMode(entries)
			if err != nil {
				return err
			}

			opts := plotting.Options{
				Facets:       facets,
				ChempotTable: !noTable,
				Entries:      mode,
				StyleFile:    stylePath,
				Colormap:     colormap,
				AutoLabels:   autoLabels,
				Filename:     output,
			}
			if chempotsPath != "" {
				spec, err := defectdata.LoadChempots(chempotsPath)
				if err != nil {
					return err
				}
				opts.Chempots = spec
			}
			if opts.XLim, err = parseRange(xlimStr); err != nil {
				return fmt.Errorf("--xlim: %w", err)
			}
			if opts.YLim, err = parseRange(ylimStr); err != nil {
				return fmt.Errorf("--ylim: %w", err)
			}
			if fermiStr != "" {
				fl, err := strconv.ParseFloat(fermiStr, 64)
				if err != nil {
					return fmt.Errorf("--fermi-level: %w", err)
				}
				opts.FermiLevel = &fl
			}

			fig, err := plotting.FormationEnergyPlot(d, opts)
			if err != nil {
				return err
			}
			printWarnings(fig.Warnings)
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chempotsPath, "chempots", "", "path to the chemical potentials JSON")
	cmd.Flags().StringSliceVar(&facets, "facets", nil, "facet(s) to plot; default all")
	cmd.Flags().StringVar(&entries, "entries", "stable", "lines to draw: stable, all or faded")
	cmd.Flags().StringVar(&stylePath, "style", "", "YAML plot style file")
	cmd.Flags().StringVar(&xlimStr, "xlim", "", "x-axis range as lo,hi (eV)")
	cmd.Flags().StringVar(&ylimStr, "ylim", "", "y-axis range as lo,hi (eV)")
	cmd.Flags().StringVar(&fermiStr, "fermi-level", "", "draw a vertical marker at this Fermi level (eV)")
	cmd.Flags().StringVar(&colormap, "colormap", "", "line color scheme: Dark2, tab10 or tab20")
	cmd.Flags().BoolVar(&autoLabels, "auto-labels", false, "annotate transition levels with charge states")
	cmd.Flags().BoolVar(&noTable, "no-chempot-table", false, "hide the chemical potential table")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG path (required)")
	cmd.MarkFlagRequired("output")

	return cmd
}

// parseRange parses "lo,hi" into an axis override.
func parseRange(s string) (*[2]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("want lo,hi, got %q", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	if hi <= lo {
		return nil, fmt.Errorf("range %q is empty", s)
	}
	return &[2]float64{lo, hi}, nil
}
