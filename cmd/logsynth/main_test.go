package main

import (
	"testing"

	"logsynth/internal/config"
)

func TestApplyOnlyOverridesChangedFlags(t *testing.T) {
	f := newGenerateFlags()
	if err := f.fs.Parse([]string{"--days", "2", "--start-date", "2024-01-01", "--compress"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Entries = 50
	cfg.OutputDir = "/from/file"
	cfg.Update(f.apply)

	if cfg.Days != 2 || cfg.StartDate != "2024-01-01" || !cfg.Compress {
		t.Errorf("changed flags not applied: days=%d start=%q compress=%v", cfg.Days, cfg.StartDate, cfg.Compress)
	}
	if cfg.Entries != 50 || cfg.OutputDir != "/from/file" {
		t.Errorf("unset flags overwrote config: entries=%d output=%q", cfg.Entries, cfg.OutputDir)
	}
}

func TestFormatCountsIsSorted(t *testing.T) {
	got := formatCounts(map[string]int{"WARN": 2, "DEBUG": 1, "INFO": 7})
	if want := "DEBUG=1 INFO=7 WARN=2"; got != want {
		t.Errorf("formatCounts() = %q, want %q", got, want)
	}
}
