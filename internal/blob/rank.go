package blob

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/raster"
)

var (
	// ErrInvalidArgument is the parent of argument errors from this package.
	ErrInvalidArgument = errors.New("blob: invalid argument")
	// ErrInvalidK is returned when fewer than one blob is requested.
	ErrInvalidK = fmt.Errorf("%w: k must be at least 1", ErrInvalidArgument)
)

// Shades that replace pure black and pure white so a recolored blob stays
// distinguishable from the thresholded backdrop.
var (
	DarkClamp  = colorutil.Color{R: 10, G: 10, B: 10}
	LightClamp = colorutil.Color{R: 245, G: 245, B: 245}
)

// Blob is one ranked component.
type Blob struct {
	Rank  int
	Root  int
	Size  int
	Color colorutil.Color
}

// Rank selects up to k of the largest black components, largest first, and
// assigns each its shade. Equal sizes are ordered by ascending root id.
// k larger than the number of candidates is clamped; no candidates yields an
// empty slice.
func Rank(r *Result, k int) ([]Blob, error) {
	if k < 1 {
		return nil, fmt.Errorf("blob: rank k=%d: %w", k, ErrInvalidK)
	}
	roots, err := r.Candidates()
	if err != nil {
		return nil, fmt.Errorf("blob: rank: %w", err)
	}
	return rankRoots(r, roots, k)
}

// rankRoots orders roots in place and keeps the first k. k must be >= 1.
func rankRoots(r *Result, roots []int, k int) ([]Blob, error) {
	sizes := make(map[int]int, len(roots))
	for _, root := range roots {
		n, err := r.Forest.Size(root)
		if err != nil {
			return nil, fmt.Errorf("blob: rank: %w", err)
		}
		sizes[root] = n
	}

	sort.Slice(roots, func(i, j int) bool {
		si, sj := sizes[roots[i]], sizes[roots[j]]
		if si != sj {
			return si > sj
		}
		return roots[i] < roots[j]
	})

	if k > len(roots) {
		k = len(roots)
	}
	blobs := make([]Blob, k)
	for i := 0; i < k; i++ {
		blobs[i] = Blob{
			Rank:  i,
			Root:  roots[i],
			Size:  sizes[roots[i]],
			Color: Shade(r.Target, i, k),
		}
	}
	return blobs, nil
}

// Shade returns the color for rank i of k: each channel of target scaled by
// (k-i+1)/(k+1) and rounded, so rank 0 keeps the target and later ranks get
// darker. Pure black maps to DarkClamp and pure white to LightClamp.
// i is clamped into [0, k-1].
func Shade(target colorutil.Color, i, k int) colorutil.Color {
	if k < 1 {
		k = 1
	}
	if i < 0 {
		i = 0
	}
	if i >= k {
		i = k - 1
	}

	factor := float64(k-i+1) / float64(k+1)
	c := colorutil.Color{
		R: scaleChannel(target.R, factor),
		G: scaleChannel(target.G, factor),
		B: scaleChannel(target.B, factor),
	}

	switch c {
	case colorutil.Black:
		return DarkClamp
	case colorutil.White:
		return LightClamp
	}
	return c
}

func scaleChannel(v uint8, factor float64) uint8 {
	s := math.Round(float64(v) * factor)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// Recolor paints the members of every selected blob with that blob's color.
// All other pixels keep their thresholded color. Blob roots must be current
// roots of r.Forest, as returned by Rank.
func Recolor(r *Result, blobs []Blob) (*raster.Image, error) {
	for _, b := range blobs {
		members, err := r.Forest.Get(b.Root)
		if err != nil {
			return nil, fmt.Errorf("blob: recolor rank %d: %w", b.Rank, err)
		}
		for _, id := range members {
			r.Image.Set(id, b.Color)
		}
	}
	return r.Image, nil
}
