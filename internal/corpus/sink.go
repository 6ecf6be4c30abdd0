package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"logsynth/internal/synth"
)

// Sink persists one batch to one path
type Sink interface {
	WriteBatch(path string, entries []synth.LogEntry) error
}

// FileSink writes newline-delimited JSON, optionally zstd-compressed.
// Existing files are truncated, never appended to.
type FileSink struct {
	Compress bool
}

// WriteBatch creates the parent directory and overwrites path with entries
func (s FileSink) WriteBatch(path string, entries []synth.LogEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create batch file: %w", err)
	}

	if err := s.encode(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func (s FileSink) encode(w io.Writer, entries []synth.LogEntry) error {
	if !s.Compress {
		return writeNDJSON(w, entries)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := writeNDJSON(enc, entries); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// json.Encoder terminates each value with a single newline
func writeNDJSON(w io.Writer, entries []synth.LogEntry) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return bw.Flush()
}
