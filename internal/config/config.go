package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"logsynth/internal/synth"
)

// DateLayout is the accepted --start-date format
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for a start date not in YYYY-MM-DD form
var ErrInvalidDate = errors.New("invalid start date, expected YYYY-MM-DD")

// Config represents the main configuration structure
type Config struct {
	mu sync.RWMutex

	StartDate string        `yaml:"start_date"`
	Days      int           `yaml:"days"`
	Entries   int           `yaml:"entries"`
	OutputDir string        `yaml:"output_dir"`
	Seed      int64         `yaml:"seed"`
	Compress  bool          `yaml:"compress"`
	Catalog   synth.Catalog `yaml:"catalog"`
}

// Run is an immutable copy of the settings one build needs
type Run struct {
	Start     time.Time
	Days      int
	Entries   int
	OutputDir string
	Seed      int64
	Compress  bool
	Catalog   synth.Catalog
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Days:      7,
		Entries:   1000,
		OutputDir: "./logs",
		Catalog:   synth.DefaultCatalog(),
	}
}

// Load loads configuration from a file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Catalog tables present in the file replace the defaults wholesale
	cfg.Catalog = synth.Catalog{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Catalog = mergeCatalog(cfg.Catalog, synth.DefaultCatalog())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeCatalog(c, defaults synth.Catalog) synth.Catalog {
	if len(c.Services) == 0 {
		c.Services = defaults.Services
	}
	if len(c.Endpoints) == 0 {
		c.Endpoints = defaults.Endpoints
	}
	if len(c.Methods) == 0 {
		c.Methods = defaults.Methods
	}
	if len(c.Levels) == 0 {
		c.Levels = defaults.Levels
	}
	if len(c.StatusCodes) == 0 {
		c.StatusCodes = defaults.StatusCodes
	}
	return c
}

// Validate checks ranges and the catalog
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Days < 0 {
		return fmt.Errorf("days must not be negative, got %d", c.Days)
	}
	if c.Entries < 0 {
		return fmt.Errorf("entries must not be negative, got %d", c.Entries)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.StartDate != "" {
		if _, err := ParseStartDate(c.StartDate, time.Time{}); err != nil {
			return err
		}
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Update applies fn under the write lock; fn must not call other Config methods
func (c *Config) Update(fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

// Snapshot resolves the start date against now and returns a copy of the
// settings for one build
func (c *Config) Snapshot(now time.Time) (Run, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start, err := ParseStartDate(c.StartDate, now)
	if err != nil {
		return Run{}, err
	}

	return Run{
		Start:     start,
		Days:      c.Days,
		Entries:   c.Entries,
		OutputDir: c.OutputDir,
		Seed:      c.Seed,
		Compress:  c.Compress,
		Catalog:   c.Catalog,
	}, nil
}

// ParseStartDate parses YYYY-MM-DD as a UTC calendar date. An empty string
// means now's local calendar date.
func ParseStartDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Watch starts watching the config file for changes. Each write reloads
// the file; a file that fails to load or validate is ignored and the
// previous settings stay in effect.
func (c *Config) Watch(path string, onChange func()) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					newCfg, err := Load(path)
					if err != nil {
						fmt.Fprintf(os.Stderr, "Config reload failed: %v\n", err)
						continue
					}
					c.replace(newCfg)
					if onChange != nil {
						onChange()
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "Config watcher error: %v\n", err)
			}
		}
	}()

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return watcher.Close, nil
}

func (c *Config) replace(newCfg *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.StartDate = newCfg.StartDate
	c.Days = newCfg.Days
	c.Entries = newCfg.Entries
	c.OutputDir = newCfg.OutputDir
	c.Seed = newCfg.Seed
	c.Compress = newCfg.Compress
	c.Catalog = newCfg.Catalog
}
