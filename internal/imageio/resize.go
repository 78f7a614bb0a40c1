package imageio

import (
	"image"

	"blob-recolor/internal/raster"

	"golang.org/x/image/draw"
)

// Fit downscales img so that neither side exceeds maxSize, keeping the
// aspect ratio. Images already within bounds, or maxSize <= 0, are returned
// unchanged. Run it before detection: resampling blends colors across blob
// edges.
func Fit(img *raster.Image, maxSize int) (*raster.Image, error) {
	if maxSize <= 0 || (img.Width <= maxSize && img.Height <= maxSize) {
		return img, nil
	}

	w, h := maxSize, maxSize
	if img.Width >= img.Height {
		h = img.Height * maxSize / img.Width
	} else {
		w = img.Width * maxSize / img.Height
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	src := ToNRGBA(img)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	// CatmullRom approximates Lanczos
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return FromImage(dst)
}
