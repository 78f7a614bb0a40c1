package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"blob-recolor/internal/batch"
	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/config"
	"blob-recolor/internal/logger"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	input := flag.String("input", "", "Input image or directory of images")
	outputDir := flag.String("output", "", "Output directory (default: <input dir>/blobs)")
	colorHex := flag.String("color", "", "Target color as #rrggbb (default: #ff0000)")
	red := flag.Int("r", -1, "Target red 0-255 (with -g and -b, overrides -color)")
	green := flag.Int("g", -1, "Target green 0-255")
	blue := flag.Int("b", -1, "Target blue 0-255")
	tolerance := flag.Int("tolerance", -1, "Color distance 0-100 still counted as the target (default: 10)")
	k := flag.Int("k", 0, "Number of largest blobs to recolor (default: 5)")
	format := flag.String("format", "", "Output format: png, webp, jpeg, bmp, tiff (default: png)")
	maxSize := flag.Int("max-size", 0, "Downscale inputs larger than this many pixels per side")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")

	flag.Parse()

	if *input == "" && flag.NArg() > 0 {
		*input = flag.Arg(0)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if *red >= 0 && *green >= 0 && *blue >= 0 {
		if *red > 255 || *green > 255 || *blue > 255 {
			fmt.Fprintln(os.Stderr, "Error: -r, -g and -b must be in 0-255")
			os.Exit(1)
		}
		*colorHex = colorutil.Color{R: uint8(*red), G: uint8(*green), B: uint8(*blue)}.Hex()
	}

	// CLI flags override config file
	var toleranceFlag *int
	if *tolerance >= 0 {
		toleranceFlag = tolerance
	}
	cfg.Resolve(config.Flags{
		Input:     *input,
		OutputDir: *outputDir,
		Color:     *colorHex,
		Tolerance: toleranceFlag,
		K:         *k,
		Format:    *format,
		MaxSize:   *maxSize,
		Workers:   *workers,
		LogLevel:  *logLevel,
	})

	if cfg.Input == "" {
		fmt.Fprintln(os.Stderr, "Error: no input. Use -input or pass a path.")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	target, _ := cfg.TargetColor()
	outFormat, _ := cfg.OutputFormat()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewConsoleLogger(level)

	jobs, err := batch.Discover(cfg.Input, cfg.OutputDir, outFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		fmt.Println("No images to process.")
		os.Exit(0)
	}

	// Print summary
	fmt.Printf("Blob detection: target %s, tolerance %d, k %d\n", target.Hex(), cfg.Tolerance, cfg.K)
	fmt.Printf("Images: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		Target:           target,
		Tolerance:        cfg.Tolerance,
		K:                cfg.K,
		ThresholdWorkers: cfg.ThresholdWorkers,
		Format:           outFormat,
		MaxSize:          cfg.MaxSize,
		Workers:          cfg.Workers,
		Logger:           log,
		Progress:         os.Stdout,
	}

	results := batch.Run(ctx, batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			fmt.Printf("  %s: %d/%d blobs recolored (%dms)\n", r.Name, r.Stats.SelectedK, r.Stats.Candidates, r.Elapsed.Milliseconds())
			for _, b := range r.Blobs {
				fmt.Printf("    Blob %d: %d px %s\n", b.Rank+1, b.Size, b.Color.Hex())
			}
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Processed: %d/%d\n", success, len(jobs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	manifest := batch.BuildManifest(batch.NewRunID(), batchCfg, cfg.OutputDir, results)
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
