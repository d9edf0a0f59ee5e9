// Package commands implements the defectplotter CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"defectplot/src/plotting"
)

var (
	diagramPath string
	logLevel    string

	warnPrinter = color.New(color.FgYellow)
	errPrinter  = color.New(color.FgRed, color.Bold)
)

func Execute() error {
	root := &cobra.Command{
		Use:           "defectplotter",
		Short:         "Render defect formation energy / transition level diagrams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			plotting.SetLogLevel(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&diagramPath, "diagram", "", "path to the defect phase diagram JSON")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(plotCmd(), inspectCmd())
	err := root.Execute()
	if err != nil {
		errPrinter.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

// printWarnings echoes advisory plot warnings to the terminal in yellow.
func printWarnings(warnings []string) {
	for _, w := range warnings {
		warnPrinter.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func requireDiagram() error {
	if diagramPath == "" {
		return fmt.Errorf("--diagram is required")
	}
	return nil
}
