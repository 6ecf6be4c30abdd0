package inspect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"logsynth/internal/corpus"
	"logsynth/internal/synth"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func buildCorpus(t *testing.T, compressed bool) string {
	t.Helper()
	root := t.TempDir()
	b := corpus.NewBuilder(synth.New(synth.DefaultCatalog(), 11), corpus.Options{Compressed: compressed})
	if _, err := b.Build(context.Background(), jan1, 2, 100, root); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return root
}

func TestCorpusCountsGeneratedTree(t *testing.T) {
	for _, compressed := range []bool{false, true} {
		root := buildCorpus(t, compressed)

		report, err := Corpus(context.Background(), root)
		if err != nil {
			t.Fatalf("compressed=%v: Corpus() error = %v", compressed, err)
		}
		if len(report.Files) != 10 {
			t.Fatalf("compressed=%v: %d files, want 10", compressed, len(report.Files))
		}
		if report.Entries != 200 || report.Unsorted != 0 {
			t.Fatalf("compressed=%v: entries=%d unsorted=%d", compressed, report.Entries, report.Unsorted)
		}
		for _, service := range synth.DefaultCatalog().Services {
			if report.Services[service] != 40 {
				t.Errorf("compressed=%v: %s has %d entries, want 40", compressed, service, report.Services[service])
			}
		}

		total := 0
		for _, n := range report.Levels {
			total += n
		}
		if total != 200 {
			t.Errorf("compressed=%v: level counts sum to %d", compressed, total)
		}
	}
}

func TestFileDetectsUnsortedTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs_api-gateway_20240101.json")
	content := `{"timestamp":"2024-01-01T05:00:00.000000","level":"INFO"}
{"timestamp":"2024-01-01T04:00:00.000000","level":"WARN"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fr, err := File(path)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if fr.Sorted {
		t.Error("file reported sorted")
	}
	if fr.Lines != 2 || fr.Levels["INFO"] != 1 || fr.Levels["WARN"] != 1 {
		t.Errorf("report = %+v", fr)
	}
}

func TestFileRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs_api-gateway_20240101.json")
	content := `{"timestamp":"2024-01-01T05:00:00.000000","level":"INFO"}
not json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := File(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("File() error = %v, want *ParseError", err)
	}
	if pe.Line != 2 {
		t.Errorf("ParseError.Line = %d, want 2", pe.Line)
	}
}

func TestFileRejectsNonObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs_api-gateway_20240101.json")
	if err := os.WriteFile(path, []byte("[1,2]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var pe *ParseError
	if _, err := File(path); !errors.As(err, &pe) {
		t.Fatalf("File() error = %v, want *ParseError", err)
	}
}

func TestIsBatchFile(t *testing.T) {
	tests := map[string]bool{
		"logs_api-gateway_20240101.json":     true,
		"logs_api-gateway_20240101.json.zst": true,
		"logs_api-gateway_20240101.txt":      false,
		"notes.json":                         false,
	}
	for name, want := range tests {
		if got := IsBatchFile(name); got != want {
			t.Errorf("IsBatchFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCorpusMissingRoot(t *testing.T) {
	if _, err := Corpus(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("Corpus() on a missing root returned nil error")
	}
}
