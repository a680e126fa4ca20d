package main

import (
	"os"

	"finbook/csv-import/cmd/categorize"
	"finbook/csv-import/cmd/dupes"
	"finbook/csv-import/cmd/importcsv"
	"finbook/csv-import/cmd/root"
	"finbook/csv-import/cmd/rules"
	"finbook/csv-import/cmd/runs"
	"finbook/csv-import/cmd/summary"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(importcsv.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(dupes.Cmd)
	root.Cmd.AddCommand(runs.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
}

func main() {
	err := root.Cmd.Execute()
	root.CloseContainer()
	if err != nil {
		// Cobra has already printed the error.
		os.Exit(1)
	}
}
