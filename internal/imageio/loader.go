// Package imageio converts between encoded image files and raster.Image
// buffers. It is the only package that knows about container formats.
package imageio

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"blob-recolor/internal/raster"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// The tga package registers itself with an empty magic string, which
// image.Decode matches against every input before the other formats get a
// chance. Decoders are therefore picked here by signature and never through
// the image registry.
type decoder struct {
	name  string
	match func(head []byte) bool
	fn    func(io.Reader) (image.Image, error)
}

var decoders = []decoder{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", prefix("\xff\xd8"), jpeg.Decode},
	{"gif", prefix("GIF8"), gif.Decode},
	{"bmp", prefix("BM"), bmp.Decode},
	{"tiff", func(h []byte) bool {
		return bytes.HasPrefix(h, []byte("II*\x00")) || bytes.HasPrefix(h, []byte("MM\x00*"))
	}, tiff.Decode},
	{"webp", func(h []byte) bool {
		return len(h) >= 12 && string(h[:4]) == "RIFF" && string(h[8:12]) == "WEBP"
	}, webp.Decode},
}

func prefix(magic string) func([]byte) bool {
	return func(h []byte) bool { return bytes.HasPrefix(h, []byte(magic)) }
}

// Load reads an image file and returns an opaque RGB buffer. Alpha is
// dropped without compositing. Files named *.tga go straight to the TGA
// decoder since TGA has no signature.
func Load(path string) (*raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = tga.Decode(bufio.NewReader(f))
	} else {
		img, _, err = decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	return FromImage(img)
}

// Decode reads png, jpeg, gif, bmp, tiff or webp from r, recognised by
// signature. Anything else is tried as TGA.
func Decode(r io.Reader) (*raster.Image, error) {
	img, _, err := decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	return FromImage(img)
}

func decode(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(12)
	if err != nil && err != io.EOF {
		return nil, "", err
	}
	for _, d := range decoders {
		if d.match(head) {
			img, err := d.fn(br)
			return img, d.name, err
		}
	}
	img, err := tga.Decode(br)
	return img, "tga", err
}

// FromImage copies src into a new RGB buffer.
func FromImage(src image.Image) (*raster.Image, error) {
	n := toNRGBA(src)
	b := n.Bounds()
	dst, err := raster.NewImage(b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("imageio: convert: %w", err)
	}
	for y := 0; y < b.Dy(); y++ {
		si := y * n.Stride
		di := y * dst.Width * 3
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[di] = n.Pix[si]
			dst.Pix[di+1] = n.Pix[si+1]
			dst.Pix[di+2] = n.Pix[si+2]
			si += 4
			di += 3
		}
	}
	return dst, nil
}

// ToNRGBA returns an opaque NRGBA copy of img with origin (0, 0).
func ToNRGBA(img *raster.Image) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	si := 0
	for di := 0; di < len(dst.Pix); di += 4 {
		dst.Pix[di] = img.Pix[si]
		dst.Pix[di+1] = img.Pix[si+1]
		dst.Pix[di+2] = img.Pix[si+2]
		dst.Pix[di+3] = 255
		si += 3
	}
	return dst
}

// toNRGBA converts any image to NRGBA with origin (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.RGBA:
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
			}
		}
	}
	return dst
}
