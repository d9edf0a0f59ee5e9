package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"defectplot/src/defectdata"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a defect phase diagram file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDiagram(); err != nil {
				return err
			}
			d, err := defectdata.LoadDiagram(diagramPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "band gap: %.3f eV\n", d.BandGap())
			fmt.Fprintf(out, "entries:  %d\n", len(d.Entries()))

			transitions := d.TransitionLevels()
			species := make([]string, 0, len(transitions))
			for name := range transitions {
				species = append(species, name)
			}
			sort.Strings(species)

			stable := d.StableEntries()
			for _, name := range species {
				charges := make([]string, 0, len(stable[name]))
				for _, e := range stable[name] {
					charges = append(charges, fmt.Sprintf("%+d", e.Charge))
				}
				fmt.Fprintf(out, "\n%s  (stable charges: %s)\n", name, strings.Join(charges, ", "))
				tl := transitions[name]
				if len(tl) == 0 {
					fmt.Fprintf(out, "  no transition levels in the gap\n")
					continue
				}
				for _, fl := range tl.Breakpoints() {
					cs := tl[fl]
					fmt.Fprintf(out, "  ε(%+d/%+d) at %.3f eV\n", cs.Max(), cs.Min(), fl)
				}
			}
			return nil
		},
	}
}
