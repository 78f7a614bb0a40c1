package imageio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"blob-recolor/internal/raster"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
)

// Format names an output encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat accepts a format name or file extension, with or without dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("imageio: unknown format %q", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Encode writes img to w. WebP output is lossless.
func Encode(w io.Writer, img *raster.Image, f Format) error {
	nrgba := ToNRGBA(img)
	var err error
	switch f {
	case WebP:
		err = nativewebp.Encode(w, nrgba, nil)
	case PNG:
		err = imaging.Encode(w, nrgba, imaging.PNG)
	case JPEG:
		err = imaging.Encode(w, nrgba, imaging.JPEG, imaging.JPEGQuality(95))
	case BMP:
		err = imaging.Encode(w, nrgba, imaging.BMP)
	case TIFF:
		err = imaging.Encode(w, nrgba, imaging.TIFF)
	default:
		return fmt.Errorf("imageio: unknown format %q", f)
	}
	if err != nil {
		return fmt.Errorf("imageio: %s encode: %w", f, err)
	}
	return nil
}

// Save encodes img to path, creating parent directories.
func Save(path string, img *raster.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("imageio: save %s: %w", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: save %s: %w", path, err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("imageio: save %s: %w", path, err)
	}
	return nil
}

// IsSupported reports whether path has an extension Load can decode.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".tga":
		return true
	}
	return false
}
