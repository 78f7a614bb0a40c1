package threshold

import (
	"bytes"
	"math/rand"
	"testing"

	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/raster"
)

func randomImage(t *testing.T, w, h int, seed int64) *raster.Image {
	t.Helper()
	img, err := raster.NewImage(w, h)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Read(img.Pix)
	return img
}

func isBinary(img *raster.Image) bool {
	for id := 0; id < img.Len(); id++ {
		c := img.At(id)
		if c != colorutil.Black && c != colorutil.White {
			return false
		}
	}
	return true
}

func TestThreshold_OutputIsBinary(t *testing.T) {
	target := colorutil.Color{R: 200, G: 40, B: 40}
	for _, okDist := range []int{-5, 0, 5, 20, 50, 100, 250} {
		img := randomImage(t, 17, 11, int64(okDist)+1)
		Threshold(img, target, okDist)
		if !isBinary(img) {
			t.Errorf("okDist=%d: output contains non black/white pixels", okDist)
		}
	}
}

func TestThreshold_MatchIsBlack(t *testing.T) {
	target := colorutil.Color{R: 255}
	img, _ := raster.NewImage(3, 1)
	img.Set(0, colorutil.Color{R: 250})         // distance 0
	img.Set(1, colorutil.Color{R: 0, B: 255})   // distance 66
	img.Set(2, colorutil.Color{R: 255, G: 100}) // distance 5

	Threshold(img, target, 5)

	want := []colorutil.Color{colorutil.Black, colorutil.White, colorutil.Black}
	for id, w := range want {
		if got := img.At(id); got != w {
			t.Errorf("pixel %d = %v, want %v", id, got, w)
		}
	}
}

func TestThreshold_LargeToleranceMatchesAll(t *testing.T) {
	img := randomImage(t, 8, 8, 42)
	Threshold(img, colorutil.Black, 101)
	for id := 0; id < img.Len(); id++ {
		if img.At(id) != colorutil.Black {
			t.Fatalf("pixel %d not black with okDist=101", id)
		}
	}
}

func TestThresholdParallel_MatchesSequential(t *testing.T) {
	target := colorutil.Color{R: 90, G: 160, B: 30}
	for _, workers := range []int{0, 1, 2, 3, 7, 64} {
		seq := randomImage(t, 31, 23, 7)
		par := seq.Clone()

		Threshold(seq, target, 12)
		ThresholdParallel(par, target, 12, workers)

		if !bytes.Equal(seq.Pix, par.Pix) {
			t.Errorf("workers=%d: parallel output differs from sequential", workers)
		}
	}
}
