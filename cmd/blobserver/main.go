package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blob-recolor/internal/config"
	"blob-recolor/internal/logger"
	"blob-recolor/internal/server"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	listen := flag.String("listen", "", "Listen address (default: :8080)")
	tolerance := flag.Int("tolerance", -1, "Default tolerance when the form omits dist (default: 10)")
	maxSize := flag.Int("max-size", 0, "Downscale uploads larger than this many pixels per side")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	var toleranceFlag *int
	if *tolerance >= 0 {
		toleranceFlag = tolerance
	}
	cfg.Resolve(config.Flags{
		Listen:    *listen,
		Tolerance: toleranceFlag,
		MaxSize:   *maxSize,
		LogLevel:  *logLevel,
	})

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewConsoleLogger(level)

	// The upload form's k defaults to a single blob.
	srv := server.New(server.Options{
		Addr:             cfg.Listen,
		TempDir:          cfg.TempDir,
		MaxSize:          cfg.MaxSize,
		DefaultK:         1,
		DefaultTolerance: cfg.Tolerance,
		ThresholdWorkers: cfg.ThresholdWorkers,
		Logger:           log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error("main", err, nil)
		os.Exit(1)
	}
}
