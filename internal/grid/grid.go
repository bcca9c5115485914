// Package grid implements the spatial mesh over the square world: an
// M x M array of cells, each an ordered sequence of owned agent ids, with
// neighborhood enumeration for contact discovery (spec.md section 3,
// "Field" invariant, and section 4.2's "3x3 block of cells" scan).
//
// The shape mirrors the corpus's adjacency-style container interfaces
// (see the teacher's network.go HostNetwork: an interface plus one
// concrete implementation, with a Copy method for deterministic
// re-seeding) even though the underlying structure here is a mesh rather
// than a graph.
package grid

import "github.com/kentwait/epidemigo/internal/agent"

// Grid is an M x M mesh of cells covering a square world of side Length.
type Grid struct {
	M      int
	Length float64
	cells  [][]agent.AgentID
}

// CellSide is the length of one grid cell's edge.
func (g *Grid) CellSide() float64 {
	return g.Length / float64(g.M)
}

// New allocates an empty M x M grid over a world of the given side length.
func New(m int, length float64) *Grid {
	g := &Grid{M: m, Length: length, cells: make([][]agent.AgentID, m*m)}
	return g
}

// Index computes the flat cell index for a position, clamping to the grid
// bounds so that floating point drift at the world edge never produces an
// out-of-range index.
func (g *Grid) Index(pos [2]float64) int {
	side := g.CellSide()
	cx := int(pos[0] / side)
	cy := int(pos[1] / side)
	if cx < 0 {
		cx = 0
	}
	if cx >= g.M {
		cx = g.M - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= g.M {
		cy = g.M - 1
	}
	return cy*g.M + cx
}

// Coords returns the (x, y) cell coordinates for a flat cell index.
func (g *Grid) Coords(idx int) (x, y int) {
	return idx % g.M, idx / g.M
}

// Reset empties every cell.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Place inserts id into the cell covering pos. The caller is responsible
// for ensuring id is not already present in any cell (ownership transfer
// is the caller's contract, not the grid's).
func (g *Grid) Place(id agent.AgentID, pos [2]float64) {
	idx := g.Index(pos)
	g.cells[idx] = append(g.cells[idx], id)
}

// Remove deletes id from the given cell index. Returns false if id was not
// found (a caller bug, since the Field invariant requires every field
// agent to appear in exactly one cell).
func (g *Grid) Remove(cellIdx int, id agent.AgentID) bool {
	cell := g.cells[cellIdx]
	for i, v := range cell {
		if v == id {
			cell[i] = cell[len(cell)-1]
			g.cells[cellIdx] = cell[:len(cell)-1]
			return true
		}
	}
	return false
}

// Cell returns the agent ids currently owned by the cell at idx. The
// returned slice must not be mutated by the caller.
func (g *Grid) Cell(idx int) []agent.AgentID {
	return g.cells[idx]
}

// NumCells returns M*M.
func (g *Grid) NumCells() int {
	return g.M * g.M
}

// Neighborhood calls fn for every agent id in the 3x3 block of cells
// centered on the cell at idx (spec.md section 4.2 step (a)), including
// idx's own cell. Edge cells have fewer than 9 neighbors; out-of-range
// offsets are skipped rather than wrapped (the field is not a torus, per
// the GLOSSARY's "square, not torus" definition of Field).
func (g *Grid) Neighborhood(idx int, fn func(agent.AgentID)) {
	cx, cy := g.Coords(idx)
	for dy := -1; dy <= 1; dy++ {
		ny := cy + dy
		if ny < 0 || ny >= g.M {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			nx := cx + dx
			if nx < 0 || nx >= g.M {
				continue
			}
			for _, id := range g.cells[ny*g.M+nx] {
				fn(id)
			}
		}
	}
}

// Copy returns a deep copy of the grid's cell contents. Mirrors the
// teacher's HostNetwork.Copy contract: changes to the copy never affect
// the original and vice versa.
func (g *Grid) Copy() *Grid {
	cp := New(g.M, g.Length)
	for i, cell := range g.cells {
		cp.cells[i] = append([]agent.AgentID(nil), cell...)
	}
	return cp
}
