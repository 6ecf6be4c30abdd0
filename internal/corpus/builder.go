package corpus

import (
	"context"
	"fmt"
	"sort"
	"time"

	"logsynth/internal/synth"
)

// Progress is reported after each batch file is written
type Progress struct {
	Service string
	Day     time.Time
	Count   int
	Path    string
}

// Summary describes a finished build
type Summary struct {
	Files   int            `json:"files"`
	Entries int            `json:"entries"`
	Levels  map[string]int `json:"levels"`
}

// Options configures a Builder
type Options struct {
	// Sink defaults to an uncompressed FileSink
	Sink Sink
	// Compressed selects the .zst file name; it should match the sink
	Compressed bool
	// OnProgress is called after each batch; nil disables reporting
	OnProgress func(Progress)
}

// Builder generates a corpus one (day, service) batch at a time
type Builder struct {
	synth *synth.Synthesizer
	opts  Options
}

// NewBuilder creates a Builder drawing entries from s
func NewBuilder(s *synth.Synthesizer, opts Options) *Builder {
	if opts.Sink == nil {
		opts.Sink = FileSink{Compress: opts.Compressed}
	}
	return &Builder{synth: s, opts: opts}
}

// Build writes days consecutive days starting at start's calendar date.
// Each service gets entriesPerDay/len(services) entries per day; the
// remainder is dropped. The context is checked between batches only, so a
// cancelled build never leaves the builder halfway through a file.
func (b *Builder) Build(ctx context.Context, start time.Time, days, entriesPerDay int, root string) (Summary, error) {
	services := b.synth.Catalog().Services
	if len(services) == 0 {
		return Summary{}, fmt.Errorf("catalog has no services")
	}
	perService := entriesPerDay / len(services)

	summary := Summary{Levels: make(map[string]int)}
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	for d := 0; d < days; d++ {
		day := first.AddDate(0, 0, d)

		for _, service := range services {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			batch := b.Batch(day, perService)
			path := BatchPath(root, service, day, b.opts.Compressed)
			if err := b.opts.Sink.WriteBatch(path, batch); err != nil {
				return summary, err
			}

			summary.Files++
			summary.Entries += len(batch)
			for _, e := range batch {
				summary.Levels[e.Level]++
			}

			if b.opts.OnProgress != nil {
				b.opts.OnProgress(Progress{
					Service: service,
					Day:     day,
					Count:   len(batch),
					Path:    path,
				})
			}
		}
	}

	return summary, nil
}

// Batch synthesizes n entries at random times within day, sorted by timestamp
func (b *Builder) Batch(day time.Time, n int) []synth.LogEntry {
	r := b.synth.Rand()
	entries := make([]synth.LogEntry, 0, n)

	for i := 0; i < n; i++ {
		ts := time.Date(day.Year(), day.Month(), day.Day(),
			r.Intn(24), r.Intn(60), r.Intn(60), r.Intn(1000000)*1000, day.Location())
		entries = append(entries, b.synth.Synthesize(ts))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
	return entries
}
