package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"logsynth/internal/config"
	"logsynth/internal/corpus"
	"logsynth/internal/synth"
)

const (
	appVersion = "1.0.0"
	appName    = "logsynth"
)

// generateFlags holds the command line; only flags the user set override the config file
type generateFlags struct {
	fs *pflag.FlagSet

	configPath string
	startDate  string
	days       int
	entries    int
	outputDir  string
	seed       int64
	compress   bool
	watch      bool
	quiet      bool
	version    bool
}

func newGenerateFlags() *generateFlags {
	f := &generateFlags{fs: pflag.NewFlagSet(appName, pflag.ExitOnError)}

	f.fs.StringVar(&f.configPath, "config", "logsynth.yaml", "Path to configuration file")
	f.fs.StringVar(&f.startDate, "start-date", "", "Start date in YYYY-MM-DD format (default: today)")
	f.fs.IntVar(&f.days, "days", 7, "Number of days to generate logs for")
	f.fs.IntVar(&f.entries, "entries", 1000, "Approximate number of log entries per day")
	f.fs.StringVar(&f.outputDir, "output-dir", "./logs", "Output directory for log files")
	f.fs.Int64Var(&f.seed, "seed", 0, "Random seed; 0 picks a random one")
	f.fs.BoolVar(&f.compress, "compress", false, "Write zstd-compressed batch files (.json.zst)")
	f.fs.BoolVar(&f.watch, "watch", false, "Regenerate the corpus whenever the config file changes")
	f.fs.BoolVarP(&f.quiet, "quiet", "q", false, "Suppress per-file progress lines")
	f.fs.BoolVar(&f.version, "version", false, "Show version")

	return f
}

// apply copies explicitly set flags onto cfg
func (f *generateFlags) apply(c *config.Config) {
	if f.fs.Changed("start-date") {
		c.StartDate = f.startDate
	}
	if f.fs.Changed("days") {
		c.Days = f.days
	}
	if f.fs.Changed("entries") {
		c.Entries = f.entries
	}
	if f.fs.Changed("output-dir") {
		c.OutputDir = f.outputDir
	}
	if f.fs.Changed("seed") {
		c.Seed = f.seed
	}
	if f.fs.Changed("compress") {
		c.Compress = f.compress
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix(appName + ": ")

	if len(os.Args) > 1 && os.Args[1] == "inspect" {
		os.Exit(runInspect(os.Args[2:]))
	}

	flags := newGenerateFlags()
	flags.fs.Parse(os.Args[1:])

	if flags.version {
		fmt.Printf("%s v%s\n", appName, appVersion)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Update(flags.apply)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := newConsole(flags.quiet)

	outputDir, err := generate(ctx, cfg, out)
	if err != nil {
		log.Fatalf("Log generation failed: %v", err)
	}
	out.complete(outputDir)

	if !flags.watch {
		return
	}

	if err := watchAndRegenerate(ctx, cfg, flags, out); err != nil {
		log.Fatalf("Watch failed: %v", err)
	}
}

// generate runs one full build from the current settings
func generate(ctx context.Context, cfg *config.Config, out *console) (string, error) {
	run, err := cfg.Snapshot(time.Now())
	if err != nil {
		return "", err
	}

	lock, err := corpus.LockRoot(run.OutputDir)
	if err != nil {
		return "", err
	}
	defer lock.Unlock()

	s := synth.New(run.Catalog, run.Seed)
	b := corpus.NewBuilder(s, corpus.Options{
		Compressed: run.Compress,
		OnProgress: out.progress,
	})

	summary, err := b.Build(ctx, run.Start, run.Days, run.Entries, run.OutputDir)
	if err != nil {
		return "", err
	}
	out.summary(summary)
	return run.OutputDir, nil
}

// watchAndRegenerate rebuilds the corpus on each config change until ctx is done
func watchAndRegenerate(ctx context.Context, cfg *config.Config, flags *generateFlags, out *console) error {
	changes := make(chan struct{}, 1)
	closeWatcher, err := cfg.Watch(flags.configPath, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer closeWatcher()

	log.Printf("Watching %s for changes", flags.configPath)

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutdown complete")
			return nil
		case <-changes:
			// Command line flags still win over the reloaded file
			cfg.Update(flags.apply)
			if err := cfg.Validate(); err != nil {
				log.Printf("Skipping rebuild: %v", err)
				continue
			}

			log.Println("Configuration reloaded, regenerating")
			outputDir, err := generate(ctx, cfg, out)
			if errors.Is(err, context.Canceled) {
				log.Println("Shutdown complete")
				return nil
			}
			if err != nil {
				return err
			}
			out.complete(outputDir)
		}
	}
}
