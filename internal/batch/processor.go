package batch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"blob-recolor/internal/blob"
	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/imageio"
	"blob-recolor/internal/logger"
)

// Config holds all shared settings for a batch run.
type Config struct {
	Target           colorutil.Color
	Tolerance        int
	K                int
	ThresholdWorkers int

	Format  imageio.Format
	MaxSize int
	Workers int

	Logger logger.Logger
	// Progress receives a rate line every ProgressInterval; nil disables it.
	Progress         io.Writer
	ProgressInterval time.Duration
}

// Result holds the outcome of processing one image.
type Result struct {
	Name    string
	Input   string
	Output  string
	Success bool
	Error   string
	Stats   blob.Stats
	Blobs   []blob.Blob
	Elapsed time.Duration
}

// Run processes all jobs using a worker pool. Each image is processed
// sequentially by one worker. Once ctx is cancelled no further jobs are
// started; their results carry the context error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	log := logger.OrNop(cfg.Logger)

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	interval := cfg.ProgressInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f images/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				if err := ctx.Err(); err != nil {
					results[idx] = failed(jobs[idx], err.Error())
				} else {
					results[idx] = processJob(cfg, jobs[idx])
				}
				if !results[idx].Success {
					log.Warning("batch", "image failed", map[string]interface{}{
						"name":  jobs[idx].Name,
						"error": results[idx].Error,
					})
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func failed(job Job, msg string) Result {
	return Result{
		Name:   job.Name,
		Input:  job.Input,
		Output: job.Output,
		Error:  msg,
	}
}

func processJob(cfg Config, job Job) Result {
	start := time.Now()

	img, err := imageio.Load(job.Input)
	if err != nil {
		return failed(job, err.Error())
	}

	img, err = imageio.Fit(img, cfg.MaxSize)
	if err != nil {
		return failed(job, err.Error())
	}

	out, err := blob.Process(img, blob.Params{
		Target:           cfg.Target,
		Tolerance:        cfg.Tolerance,
		K:                cfg.K,
		ThresholdWorkers: cfg.ThresholdWorkers,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return failed(job, err.Error())
	}

	if err := imageio.Save(job.Output, out.Image, cfg.Format); err != nil {
		return failed(job, err.Error())
	}

	return Result{
		Name:    job.Name,
		Input:   job.Input,
		Output:  job.Output,
		Success: true,
		Stats:   out.Stats,
		Blobs:   out.Blobs,
		Elapsed: time.Since(start),
	}
}
