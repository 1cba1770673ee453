// Package path provides breadth-first grid path search that respects walls,
// floor boundaries and single-use teleporter pairs.
package path

import (
	"github.com/gammazero/deque"

	"github.com/cory-johannsen/floorsim/internal/game/grid"
)

// Terrain is the read-only grid surface the solver walks over.
type Terrain interface {
	TerrainAt(c grid.Cell) (grid.Terrain, bool)
	FloorOf(c grid.Cell) int
}

// Teleporters resolves the teleporter pad, if any, at a cell.
type Teleporters interface {
	// TeleporterAt returns the destination of the pad at c.
	TeleporterAt(c grid.Cell) (grid.Cell, bool)
}

// StepKind tags a path step.
type StepKind int

// Path step kinds.
const (
	Move StepKind = iota
	Teleport
)

// String returns "move" or "teleport".
func (k StepKind) String() string {
	if k == Teleport {
		return "teleport"
	}
	return "move"
}

// Step is one segment of a path: walk to Cell, or teleport to Cell.
type Step struct {
	Kind StepKind
	Cell grid.Cell
}

// Path is an ordered list of steps from goal back to start. Callers that push
// steps onto the front of a queue one by one end up with them in walking order.
type Path []Step

// Forward returns a copy of p in walking order, start to goal.
func (p Path) Forward() Path {
	out := make(Path, len(p))
	for i, s := range p {
		out[len(p)-1-i] = s
	}
	return out
}

// offsets indexes the 3x3 block around a cell:
//
//	0 1 2
//	3 4 5
//	6 7 8
var offsets = [9]grid.Cell{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// expandOrder visits orthogonal neighbours before diagonals so that paths
// prefer straight runs.
var expandOrder = [8]int{1, 5, 7, 3, 2, 8, 6, 0}

// Solver searches a grid for paths. A Solver holds no per-search state and may
// be reused.
type Solver struct {
	terrain     Terrain
	teleporters Teleporters
}

// NewSolver creates a Solver.
//
// Precondition: terrain must be non-nil. teleporters may be nil for a map with none.
func NewSolver(terrain Terrain, teleporters Teleporters) *Solver {
	return &Solver{terrain: terrain, teleporters: teleporters}
}

// Neighbours returns the walkable cells adjacent to c in expansion order.
// A diagonal is blocked unless both orthogonal cells beside it are floor, and
// cells on a different floor than c are never adjacent.
func (s *Solver) Neighbours(c grid.Cell) []grid.Cell {
	var kinds [9]grid.Terrain
	var valid [9]bool
	for i, off := range offsets {
		kind, ok := s.terrain.TerrainAt(c.Add(off.X, off.Y))
		kinds[i] = kind
		valid[i] = ok && kind == grid.Floor
	}
	valid[4] = false

	blocked := func(i int) bool { return kinds[i] != grid.Floor }
	if blocked(1) {
		valid[0], valid[2] = false, false
	}
	if blocked(5) {
		valid[2], valid[8] = false, false
	}
	if blocked(7) {
		valid[6], valid[8] = false, false
	}
	if blocked(3) {
		valid[0], valid[6] = false, false
	}

	floor := s.terrain.FloorOf(c)
	out := make([]grid.Cell, 0, 8)
	for _, i := range expandOrder {
		if !valid[i] {
			continue
		}
		n := c.Add(offsets[i].X, offsets[i].Y)
		if s.terrain.FloorOf(n) != floor {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s *Solver) teleporterAt(c grid.Cell) (grid.Cell, bool) {
	if s.teleporters == nil {
		return grid.Cell{}, false
	}
	return s.teleporters.TeleporterAt(c)
}

// FindPath searches breadth-first from start for the nearest cell listed in
// targets. Teleporter pads are taken as a single step and each pad pair may be
// used at most once per search.
//
// Postcondition: Returns (path, index, true) where targets[index] is the matched
// cell and path runs goal to start; a target on start yields an empty path.
// Returns (nil, -1, false) if no target is reachable.
func (s *Solver) FindPath(start grid.Cell, targets []grid.Cell) (Path, int, bool) {
	if len(targets) == 0 {
		return nil, -1, false
	}
	index := make(map[grid.Cell]int, len(targets))
	for i, t := range targets {
		if _, dup := index[t]; !dup {
			index[t] = i
		}
	}

	var frontier deque.Deque[grid.Cell]
	frontier.PushBack(start)
	cameFrom := map[grid.Cell]grid.Cell{}
	visited := map[grid.Cell]bool{start: true}
	teleported := map[grid.Cell]bool{}
	used := map[grid.Cell]bool{}

	goal, matched := grid.Cell{}, -1
	for frontier.Len() > 0 {
		current := frontier.PopFront()
		if i, ok := index[current]; ok {
			goal, matched = current, i
			break
		}

		if dest, ok := s.teleporterAt(current); ok && !used[current] {
			used[current], used[dest] = true, true
			if !visited[dest] {
				visited[dest] = true
				cameFrom[dest] = current
				teleported[dest] = true
				frontier.PushBack(dest)
			}
		}

		for _, n := range s.Neighbours(current) {
			if visited[n] {
				continue
			}
			visited[n] = true
			cameFrom[n] = current
			frontier.PushBack(n)
		}
	}
	if matched < 0 {
		return nil, -1, false
	}

	p := Path{}
	if goal != start && !used[goal] {
		if dest, ok := s.teleporterAt(goal); ok {
			p = append(p, Step{Kind: Teleport, Cell: dest})
		}
	}
	for c := goal; c != start; c = cameFrom[c] {
		if teleported[c] {
			p = append(p, Step{Kind: Teleport, Cell: c})
		} else {
			p = append(p, Step{Kind: Move, Cell: c})
		}
	}
	return p, matched, true
}

// At adapts a bare cell into a single-element target list.
func At(c grid.Cell) []grid.Cell {
	return []grid.Cell{c}
}
