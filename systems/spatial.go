// Package systems provides the per-tick systems of the box field.
package systems

import (
	"math"
	"slices"

	"github.com/pthm-cable/boxfield/components"
)

// CellKey identifies one grid cell by its integer coordinates.
type CellKey struct {
	X, Y int32
}

// Grid buckets boxes into fixed-size cells for neighbor lookups.
// The plane is unbounded: cells are created on first insert and dropped when
// they empty out, so boxes can live at negative coordinates.
type Grid struct {
	cellSize float32
	cells    map[CellKey][]*components.Box
	count    int
}

// NewGrid creates an empty grid with the given cell size.
func NewGrid(cellSize float32) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[CellKey][]*components.Box),
	}
}

// CellSize returns the edge length of one cell.
func (g *Grid) CellSize() float32 {
	return g.cellSize
}

// KeyFor returns the cell containing the point (x, y).
func (g *Grid) KeyFor(x, y float32) CellKey {
	return CellKey{
		X: int32(math.Floor(float64(x / g.cellSize))),
		Y: int32(math.Floor(float64(y / g.cellSize))),
	}
}

// Insert adds a box to the cell of its current position.
func (g *Grid) Insert(b *components.Box) {
	key := g.KeyFor(b.X, b.Y)
	g.cells[key] = append(g.cells[key], b)
	g.count++
}

// Remove takes a box out of the cell of its current position.
// The box must not have moved across cells since Insert. A box that is not
// found is ignored.
func (g *Grid) Remove(b *components.Box) {
	key := g.KeyFor(b.X, b.Y)
	bucket, ok := g.cells[key]
	if !ok {
		return
	}
	idx := slices.Index(bucket, b)
	if idx < 0 {
		return
	}
	bucket = slices.Delete(bucket, idx, idx+1)
	if len(bucket) == 0 {
		delete(g.cells, key)
	} else {
		g.cells[key] = bucket
	}
	g.count--
}

// Move relocates a box, keeping its cell membership consistent.
func (g *Grid) Move(b *components.Box, x, y float32) {
	if g.KeyFor(b.X, b.Y) == g.KeyFor(x, y) {
		b.X, b.Y = x, y
		return
	}
	g.Remove(b)
	b.X, b.Y = x, y
	g.Insert(b)
}

// QueryNeighborsInto scans the box's own cell and the 8 around it, appending
// other boxes closer than radius to dst until maxResults are collected.
// Results are in scan order, not sorted by distance.
func (g *Grid) QueryNeighborsInto(dst []*components.Box, b *components.Box, radius float32, maxResults int) []*components.Box {
	if maxResults <= 0 {
		return dst
	}
	center := g.KeyFor(b.X, b.Y)
	radiusSq := radius * radius
	found := 0

	for cx := center.X - 1; cx <= center.X+1; cx++ {
		for cy := center.Y - 1; cy <= center.Y+1; cy++ {
			for _, other := range g.cells[CellKey{X: cx, Y: cy}] {
				if other == b {
					continue
				}
				dx := other.X - b.X
				dy := other.Y - b.Y
				if dx*dx+dy*dy < radiusSq {
					dst = append(dst, other)
					found++
					if found >= maxResults {
						return dst
					}
				}
			}
		}
	}
	return dst
}

// QueryRadiusInto appends every box closer than radius to (x, y), scanning
// cellSpan cells in each direction around the center cell.
func (g *Grid) QueryRadiusInto(dst []*components.Box, x, y, radius float32, cellSpan int) []*components.Box {
	center := g.KeyFor(x, y)
	span := int32(cellSpan)
	radiusSq := radius * radius

	for cx := center.X - span; cx <= center.X+span; cx++ {
		for cy := center.Y - span; cy <= center.Y+span; cy++ {
			for _, other := range g.cells[CellKey{X: cx, Y: cy}] {
				dx := other.X - x
				dy := other.Y - y
				if dx*dx+dy*dy < radiusSq {
					dst = append(dst, other)
				}
			}
		}
	}
	return dst
}

// Len returns the number of registered boxes.
func (g *Grid) Len() int {
	return g.count
}

// Cells returns the number of occupied cells.
func (g *Grid) Cells() int {
	return len(g.cells)
}

// Contains reports whether the box is registered in the cell of its position.
func (g *Grid) Contains(b *components.Box) bool {
	return slices.Contains(g.cells[g.KeyFor(b.X, b.Y)], b)
}

// Memberships counts how many buckets hold the box. Scans every cell.
func (g *Grid) Memberships(b *components.Box) int {
	n := 0
	for _, bucket := range g.cells {
		for _, other := range bucket {
			if other == b {
				n++
			}
		}
	}
	return n
}

// Clear removes all boxes from the grid.
func (g *Grid) Clear() {
	clear(g.cells)
	g.count = 0
}

// Rebuild changes the cell size and re-registers boxes in the given order.
// Any previous contents are dropped.
func (g *Grid) Rebuild(cellSize float32, boxes []*components.Box) {
	g.Clear()
	g.cellSize = cellSize
	for _, b := range boxes {
		g.Insert(b)
	}
}
