// Package colorutil provides the RGB color type and the distance metric used
// to decide whether two colors count as the same.
package colorutil

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxSquaredDistance is the largest possible squared RGB distance (255²×3).
const MaxSquaredDistance = 195075

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Threshold output colors.
var (
	Black = Color{R: 0, G: 0, B: 0}
	White = Color{R: 255, G: 255, B: 255}
)

// Distance returns the squared Euclidean RGB distance between c1 and c2 as a
// truncated percentage of MaxSquaredDistance, always in [0, 100].
func Distance(c1, c2 Color) int {
	dr := int(c1.R) - int(c2.R)
	dg := int(c1.G) - int(c2.G)
	db := int(c1.B) - int(c2.B)
	sq := dr*dr + dg*dg + db*db
	return sq * 100 / MaxSquaredDistance
}

// Matches reports whether c1 and c2 are within okDist of each other.
func Matches(c1, c2 Color, okDist int) bool {
	return Distance(c1, c2) <= okDist
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// ParseHex parses "#rrggbb" (or "#rgb").
func ParseHex(s string) (Color, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("colorutil: parse %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return Color{R: r, G: g, B: b}, nil
}
