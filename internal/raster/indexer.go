package raster

import "fmt"

// Indexer maps (x, y) coordinates to flat pixel ids and back.
// id = y*Width + x, a bijection over [0, Width*Height).
type Indexer struct {
	Width  int
	Height int
}

// NewIndexer returns an Indexer for a W×H grid.
func NewIndexer(w, h int) (Indexer, error) {
	if w <= 0 || h <= 0 {
		return Indexer{}, fmt.Errorf("raster: indexer %dx%d: %w", w, h, ErrEmptyImage)
	}
	return Indexer{Width: w, Height: h}, nil
}

// Len returns the number of ids.
func (ix Indexer) Len() int {
	return ix.Width * ix.Height
}

// ID converts a coordinate to its pixel id. Coordinates are not bounds-checked.
func (ix Indexer) ID(x, y int) int {
	return y*ix.Width + x
}

// Coord converts a pixel id back to (x, y).
func (ix Indexer) Coord(id int) (x, y int) {
	y = id / ix.Width
	x = id - y*ix.Width
	return x, y
}

// Contains reports whether id is in [0, Len()).
func (ix Indexer) Contains(id int) bool {
	return id >= 0 && id < ix.Len()
}

// North returns the id above id, or id itself on the top row.
func (ix Indexer) North(id int) int {
	if id < ix.Width {
		return id
	}
	return id - ix.Width
}

// West returns the id left of id, or id itself in the first column.
func (ix Indexer) West(id int) int {
	if id%ix.Width == 0 {
		return id
	}
	return id - 1
}
