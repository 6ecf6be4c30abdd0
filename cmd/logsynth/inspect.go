package main

import (
	"context"
	"errors"

	"github.com/spf13/pflag"

	"logsynth/internal/inspect"
)

// runInspect re-reads a generated corpus and returns the process exit code
func runInspect(args []string) int {
	fs := pflag.NewFlagSet(appName+" inspect", pflag.ExitOnError)
	outputDir := fs.String("output-dir", "./logs", "Root of the corpus to inspect")
	verbose := fs.BoolP("verbose", "v", false, "List every batch file")
	fs.Parse(args)

	report, err := inspect.Corpus(context.Background(), *outputDir)
	if err != nil {
		var pe *inspect.ParseError
		if errors.As(err, &pe) {
			errorf("Malformed entry at %s line %d: %v\n", pe.Path, pe.Line, pe.Err)
		} else {
			errorf("Inspect failed: %v\n", err)
		}
		return 1
	}

	newConsole(false).report(report, *verbose)
	if report.Unsorted > 0 {
		return 1
	}
	return 0
}
