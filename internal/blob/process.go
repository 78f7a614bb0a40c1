package blob

import (
	"fmt"

	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/logger"
	"blob-recolor/internal/raster"

	"gonum.org/v1/gonum/stat"
)

// Params holds the caller's detection settings.
type Params struct {
	Target    colorutil.Color
	Tolerance int // 0-100, not clamped
	K         int // number of blobs to recolor, >= 1

	ThresholdWorkers int
	Logger           logger.Logger
}

// Stats are diagnostics for one run. They are not part of the output contract.
type Stats struct {
	Pixels     int     `json:"pixels"`
	Components int     `json:"components"`
	Candidates int     `json:"candidates"`
	RequestedK int     `json:"requested_k"`
	SelectedK  int     `json:"selected_k"`
	Sizes      []int   `json:"sizes"`
	MeanSize   float64 `json:"mean_size"`
	StdDevSize float64 `json:"stddev_size"`
}

// Output is the recolored buffer plus what was selected.
type Output struct {
	Image *raster.Image
	Blobs []Blob
	Stats Stats
}

// Process runs detection, ranking and recoloring on img, which is mutated
// and returned as Output.Image. With no matching pixels the output is the
// thresholded image.
func Process(img *raster.Image, p Params) (*Output, error) {
	if p.K < 1 {
		return nil, fmt.Errorf("blob: process k=%d: %w", p.K, ErrInvalidK)
	}
	log := logger.OrNop(p.Logger)

	det := Detector{ThresholdWorkers: p.ThresholdWorkers, Logger: log}
	res, err := det.Detect(img, p.Target, p.Tolerance)
	if err != nil {
		return nil, err
	}

	candidates, err := res.Candidates()
	if err != nil {
		return nil, fmt.Errorf("blob: process: %w", err)
	}
	nCandidates := len(candidates)
	blobs, err := rankRoots(res, candidates, p.K)
	if err != nil {
		return nil, err
	}
	out, err := Recolor(res, blobs)
	if err != nil {
		return nil, err
	}

	stats := newStats(res, nCandidates, p.K, blobs)
	log.Info("blob", "recolored", map[string]interface{}{
		"pixels":      stats.Pixels,
		"components":  stats.Components,
		"candidates":  stats.Candidates,
		"requested_k": stats.RequestedK,
		"selected_k":  stats.SelectedK,
	})
	for _, b := range blobs {
		log.Debug("blob", "blob selected", map[string]interface{}{
			"rank":  b.Rank + 1,
			"size":  b.Size,
			"color": b.Color.Hex(),
		})
	}

	return &Output{Image: out, Blobs: blobs, Stats: stats}, nil
}

func newStats(res *Result, candidates, requestedK int, blobs []Blob) Stats {
	s := Stats{
		Pixels:     res.Indexer.Len(),
		Components: res.Components(),
		Candidates: candidates,
		RequestedK: requestedK,
		SelectedK:  len(blobs),
		Sizes:      make([]int, len(blobs)),
	}
	if len(blobs) == 0 {
		return s
	}
	xs := make([]float64, len(blobs))
	for i, b := range blobs {
		s.Sizes[i] = b.Size
		xs[i] = float64(b.Size)
	}
	s.MeanSize, s.StdDevSize = stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		s.StdDevSize = 0
	}
	return s
}
