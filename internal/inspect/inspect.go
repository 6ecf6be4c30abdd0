package inspect

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"
)

// ParseError reports a line that is not a JSON object
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FileReport describes one batch file
type FileReport struct {
	Path    string         `json:"path"`
	Lines   int            `json:"lines"`
	Sorted  bool           `json:"sorted"`
	First   string         `json:"first,omitempty"`
	Last    string         `json:"last,omitempty"`
	Levels  map[string]int `json:"levels"`
	Service string         `json:"service"`
}

// Report aggregates every batch file under a corpus root
type Report struct {
	Files    []FileReport   `json:"files"`
	Entries  int            `json:"entries"`
	Unsorted int            `json:"unsorted"`
	Services map[string]int `json:"services"`
	Levels   map[string]int `json:"levels"`
}

// IsBatchFile matches logs_*.json and logs_*.json.zst
func IsBatchFile(name string) bool {
	return strings.HasPrefix(name, "logs_") &&
		(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.zst"))
}

// Corpus walks root and checks every batch file. Files are visited in
// lexical path order.
func Corpus(ctx context.Context, root string) (*Report, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsBatchFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus: %w", err)
	}
	sort.Strings(paths)

	report := &Report{
		Services: make(map[string]int),
		Levels:   make(map[string]int),
	}

	var p fastjson.Parser
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fr, err := scanFile(&p, path)
		if err != nil {
			return nil, err
		}
		fr.Service = serviceFromPath(root, path)

		report.Files = append(report.Files, *fr)
		report.Entries += fr.Lines
		report.Services[fr.Service] += fr.Lines
		for level, n := range fr.Levels {
			report.Levels[level] += n
		}
		if !fr.Sorted {
			report.Unsorted++
		}
	}

	return report, nil
}

// File checks a single batch file
func File(path string) (*FileReport, error) {
	var p fastjson.Parser
	return scanFile(&p, path)
}

func scanFile(p *fastjson.Parser, path string) (*FileReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	fr := &FileReport{
		Path:   path,
		Sorted: true,
		Levels: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		fr.Lines++

		v, err := p.ParseBytes(scanner.Bytes())
		if err != nil {
			return nil, &ParseError{Path: path, Line: fr.Lines, Err: err}
		}
		if v.Type() != fastjson.TypeObject {
			return nil, &ParseError{Path: path, Line: fr.Lines, Err: fmt.Errorf("not a JSON object")}
		}

		ts := string(v.GetStringBytes("timestamp"))
		if fr.Lines == 1 {
			fr.First = ts
		} else if ts < fr.Last {
			fr.Sorted = false
		}
		fr.Last = ts

		fr.Levels[string(v.GetStringBytes("level"))]++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return fr, nil
}

// The first path element under root is the service
func serviceFromPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
