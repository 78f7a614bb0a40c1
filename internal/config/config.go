package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/imageio"
)

// Config holds all configurable paths and detection settings.
type Config struct {
	// Paths
	Input     string `json:"input"`
	OutputDir string `json:"output_dir"`

	// Detection settings
	Color     string `json:"color"` // #rrggbb
	Tolerance int    `json:"tolerance"`
	K         int    `json:"k"`

	// Output and runtime settings
	Format           string `json:"format"`
	MaxSize          int    `json:"max_size"`
	Workers          int    `json:"workers"`
	ThresholdWorkers int    `json:"threshold_workers"`
	LogLevel         string `json:"log_level"`
	Listen           string `json:"listen"`
	TempDir          string `json:"temp_dir"`

	// tolerance is optional in the file; 0 is a valid value, so track presence
	toleranceSet bool
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		_, cfg.toleranceSet = raw["tolerance"]
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values mean "not set"; Tolerance is a pointer so an explicit 0 can
// still override the file.
type Flags struct {
	Input     string
	OutputDir string
	Color     string
	Tolerance *int
	K         int
	Format    string
	MaxSize   int
	Workers   int
	LogLevel  string
	Listen    string
}

// Defaults applied by Resolve.
const (
	DefaultTolerance = 10
	DefaultK         = 5
	DefaultColor     = "#ff0000"
	DefaultListen    = ":8080"
)

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when set.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Color != "" {
		c.Color = flags.Color
	}
	if flags.Tolerance != nil {
		c.Tolerance = *flags.Tolerance
		c.toleranceSet = true
	}
	if flags.K > 0 {
		c.K = flags.K
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.MaxSize > 0 {
		c.MaxSize = flags.MaxSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}

	// Output next to the input if still empty
	if c.OutputDir == "" && c.Input != "" {
		base := c.Input
		if info, err := os.Stat(c.Input); err == nil && !info.IsDir() {
			base = filepath.Dir(c.Input)
		}
		c.OutputDir = filepath.Join(base, "blobs")
	}

	if c.Color == "" {
		c.Color = DefaultColor
	}
	if !c.toleranceSet {
		c.Tolerance = DefaultTolerance
	}
	if c.K == 0 {
		c.K = DefaultK
	}
	if c.Format == "" {
		c.Format = string(imageio.PNG)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ThresholdWorkers <= 0 {
		c.ThresholdWorkers = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
}

// Validate checks values Resolve cannot default.
func (c *Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("config: k must be at least 1, got %d", c.K)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("config: tolerance must be >= 0, got %d", c.Tolerance)
	}
	if _, err := c.TargetColor(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.OutputFormat(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// TargetColor parses Color.
func (c *Config) TargetColor() (colorutil.Color, error) {
	return colorutil.ParseHex(c.Color)
}

// OutputFormat parses Format.
func (c *Config) OutputFormat() (imageio.Format, error) {
	return imageio.ParseFormat(c.Format)
}
