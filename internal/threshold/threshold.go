// Package threshold binarizes an RGB buffer against a target color.
package threshold

import (
	"sync"

	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/raster"
)

// Threshold replaces every pixel of img with Black if it is within okDist of
// target, otherwise White. It mutates img and returns it.
// okDist is not clamped: values above 100 match everything, negatives nothing.
func Threshold(img *raster.Image, target colorutil.Color, okDist int) *raster.Image {
	thresholdRows(img, target, okDist, 0, img.Height)
	return img
}

// ThresholdParallel is Threshold with rows split across workers goroutines.
// The output is byte-identical to Threshold. Falls back to Threshold if
// workers <= 1.
func ThresholdParallel(img *raster.Image, target colorutil.Color, okDist, workers int) *raster.Image {
	if workers <= 1 || img.Height <= 1 {
		return Threshold(img, target, okDist)
	}

	// Row ranges don't overlap, so no synchronization is needed for writes.
	var wg sync.WaitGroup
	rowsPerWorker := (img.Height + workers - 1) / workers

	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > img.Height {
			endRow = img.Height
		}
		if startRow >= img.Height {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			thresholdRows(img, target, okDist, start, end)
		}(startRow, endRow)
	}

	wg.Wait()
	return img
}

func thresholdRows(img *raster.Image, target colorutil.Color, okDist, startRow, endRow int) {
	for id := startRow * img.Width; id < endRow*img.Width; id++ {
		if colorutil.Matches(img.At(id), target, okDist) {
			img.Set(id, colorutil.Black)
		} else {
			img.Set(id, colorutil.White)
		}
	}
}
