package main

import (
	"os"

	"defectplot/cmd/defectplotter/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
