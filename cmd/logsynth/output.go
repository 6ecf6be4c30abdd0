package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"logsynth/internal/corpus"
	"logsynth/internal/inspect"
)

// console prints user-facing status lines
type console struct {
	w     io.Writer
	quiet bool

	count   func(...interface{}) string
	service func(...interface{}) string
	ok      *color.Color
	bad     *color.Color
	dim     *color.Color
}

func newConsole(quiet bool) *console {
	return &console{
		w:       color.Output,
		quiet:   quiet,
		count:   color.New(color.FgCyan, color.Bold).SprintFunc(),
		service: color.New(color.FgMagenta).SprintFunc(),
		ok:      color.New(color.FgGreen, color.Bold),
		bad:     color.New(color.FgRed, color.Bold),
		dim:     color.New(color.FgWhite),
	}
}

func (c *console) progress(p corpus.Progress) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.w, "Generated %s logs for %s on %s\n",
		c.count(p.Count), c.service(p.Service), p.Day.Format("2006-01-02"))
}

func (c *console) summary(s corpus.Summary) {
	if c.quiet {
		return
	}
	c.dim.Fprintf(c.w, "%d files, %d entries (%s)\n", s.Files, s.Entries, formatCounts(s.Levels))
}

func (c *console) complete(outputDir string) {
	c.ok.Fprintf(c.w, "Log generation complete. Files are in %s\n", outputDir)
}

func (c *console) report(r *inspect.Report, verbose bool) {
	if verbose {
		for _, f := range r.Files {
			status := c.ok.Sprint("sorted")
			if !f.Sorted {
				status = c.bad.Sprint("UNSORTED")
			}
			fmt.Fprintf(c.w, "%s %s lines=%d\n", status, f.Path, f.Lines)
		}
	}

	fmt.Fprintf(c.w, "%d files, %d entries\n", len(r.Files), r.Entries)
	fmt.Fprintf(c.w, "services: %s\n", formatCounts(r.Services))
	fmt.Fprintf(c.w, "levels:   %s\n", formatCounts(r.Levels))

	if r.Unsorted > 0 {
		c.bad.Fprintf(c.w, "%d file(s) not sorted by timestamp\n", r.Unsorted)
		return
	}
	c.ok.Fprintln(c.w, "All files sorted by timestamp")
}

func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := ""
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", k, m[k])
	}
	return s
}

// errorf prints to stderr regardless of quiet
func errorf(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, format, args...)
}
