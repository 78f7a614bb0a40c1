// Package blob finds 4-connected regions of a target color in an RGB buffer
// and recolors the largest of them with a rank-based gradient.
//
// Basic usage:
//
//	out, err := blob.Process(img, blob.Params{Target: red, Tolerance: 10, K: 3})
//	// out.Image is the thresholded buffer with the 3 largest red blobs shaded
//	// out.Blobs lists them largest first
package blob

import (
	"fmt"

	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/disjointset"
	"blob-recolor/internal/logger"
	"blob-recolor/internal/raster"
	"blob-recolor/internal/threshold"
)

// Result is the component forest for one thresholded image.
type Result struct {
	Image   *raster.Image
	Forest  *disjointset.Forest[int]
	Indexer raster.Indexer
	Target  colorutil.Color
}

// Detector runs the thresholding and union pass. The zero value is usable.
type Detector struct {
	// ThresholdWorkers splits thresholding across goroutines when > 1.
	// The union scan is always sequential.
	ThresholdWorkers int
	Logger           logger.Logger
}

// Detect is Detector{}.Detect.
func Detect(img *raster.Image, target colorutil.Color, okDist int) (*Result, error) {
	return Detector{}.Detect(img, target, okDist)
}

// Detect thresholds img in place and builds a forest in which every maximal
// 4-connected region of same-colored pixels is one component. Ownership of
// img moves into the returned Result.
func (d Detector) Detect(img *raster.Image, target colorutil.Color, okDist int) (*Result, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("blob: detect: %w", err)
	}
	ix, err := raster.NewIndexer(img.Width, img.Height)
	if err != nil {
		return nil, fmt.Errorf("blob: detect: %w", err)
	}

	threshold.ThresholdParallel(img, target, okDist, d.ThresholdWorkers)

	n := ix.Len()
	pixelIDs := make([]int, n)
	for i := range pixelIDs {
		pixelIDs[i] = i
	}
	res := &Result{
		Image:   img,
		Forest:  disjointset.New(pixelIDs),
		Indexer: ix,
		Target:  target,
	}

	// Row-major ids, so a plain loop visits rows top to bottom and columns
	// left to right. North and west are already merged with their own
	// predecessors when p is reached.
	for id := 0; id < n; id++ {
		if err := res.unionNeighbors(id); err != nil {
			return nil, fmt.Errorf("blob: detect pixel %d: %w", id, err)
		}
	}

	logger.OrNop(d.Logger).Debug("blob", "forest built", map[string]interface{}{
		"pixels":     n,
		"components": res.Forest.Count(),
	})
	return res, nil
}

// unionNeighbors merges id with its north and west neighbors when they share
// its post-threshold color. Edge pixels use themselves as the missing
// neighbor; a neighbor root equal to id marks that sentinel and is skipped.
func (r *Result) unionNeighbors(id int) error {
	rootNorth, err := r.Forest.Find(r.Indexer.North(id))
	if err != nil {
		return err
	}
	rootWest, err := r.Forest.Find(r.Indexer.West(id))
	if err != nil {
		return err
	}

	switch {
	case rootNorth == id:
		return r.unionIfSame(rootWest, id)
	case rootWest == id:
		return r.unionIfSame(rootNorth, id)
	default:
		if err := r.unionIfSame(rootNorth, id); err != nil {
			return err
		}
		return r.unionIfSame(rootWest, id)
	}
}

// unionIfSame merges the sets of neighbor and id when both pixels share a
// color. The image is binary, so a root's color is the color of its whole
// component.
func (r *Result) unionIfSame(neighbor, id int) error {
	if r.Image.At(neighbor) != r.Image.At(id) {
		return nil
	}
	a, err := r.Forest.Find(neighbor)
	if err != nil {
		return err
	}
	b, err := r.Forest.Find(id)
	if err != nil {
		return err
	}
	_, err = r.Forest.Union(a, b)
	return err
}

// Root returns the current root of pixel id.
func (r *Result) Root(id int) (int, error) {
	return r.Forest.Find(id)
}

// Components returns the number of components of either color.
func (r *Result) Components() int {
	return r.Forest.Count()
}

// Candidates returns the distinct roots of black (matching) components,
// ordered by first appearance in the row-major scan.
func (r *Result) Candidates() ([]int, error) {
	seen := make(map[int]struct{})
	var roots []int
	for id := 0; id < r.Indexer.Len(); id++ {
		if r.Image.At(id) != colorutil.Black {
			continue
		}
		root, err := r.Forest.Find(id)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[root]; ok {
			continue
		}
		size, err := r.Forest.Size(root)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	return roots, nil
}
