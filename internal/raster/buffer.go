package raster

import (
	"errors"
	"fmt"

	"blob-recolor/internal/colorutil"
)

// ErrEmptyImage is returned for buffers with zero width or height.
var ErrEmptyImage = errors.New("raster: image has zero width or height")

// Image holds an RGB pixel grid as a flat slice for cache locality.
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // RGB interleaved, len = W*H*3
}

// NewImage allocates a zeroed (black) W×H buffer.
func NewImage(w, h int) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: new %dx%d: %w", w, h, ErrEmptyImage)
	}
	return &Image{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*3),
	}, nil
}

// Filled returns a W×H buffer where every pixel is c.
func Filled(w, h int, c colorutil.Color) (*Image, error) {
	img, err := NewImage(w, h)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
	}
	return img, nil
}

// Validate checks the dimensions and the backing slice length.
func (img *Image) Validate() error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return ErrEmptyImage
	}
	if len(img.Pix) != img.Width*img.Height*3 {
		return fmt.Errorf("raster: pix len %d, want %d", len(img.Pix), img.Width*img.Height*3)
	}
	return nil
}

// Len returns the pixel count.
func (img *Image) Len() int {
	return img.Width * img.Height
}

// At returns the color of pixel id.
func (img *Image) At(id int) colorutil.Color {
	i := id * 3
	return colorutil.Color{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}

// Set overwrites the color of pixel id.
func (img *Image) Set(id int, c colorutil.Color) {
	i := id * 3
	img.Pix[i] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
}

// AtXY returns the color at (x, y).
func (img *Image) AtXY(x, y int) colorutil.Color {
	return img.At(y*img.Width + x)
}

// SetXY overwrites the color at (x, y).
func (img *Image) SetXY(x, y int, c colorutil.Color) {
	img.Set(y*img.Width+x, c)
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{Width: img.Width, Height: img.Height, Pix: pix}
}
