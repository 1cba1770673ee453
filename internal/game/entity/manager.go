package entity

import (
	"sort"

	"github.com/cory-johannsen/floorsim/internal/game/grid"
)

// Group names used by the domain. GroupTeleporters is reserved for teleporter
// pads and is indexed by the domain for path search.
const (
	GroupGeneric     = "generic"
	GroupPickups     = "pickups"
	GroupAgents      = "agents"
	GroupAvatar      = "avatar"
	GroupTeleporters = "teleporters"
)

// Manager owns named entity groups plus the drawable collection that drives
// per-tick update and draw.
//
// Invariant: an entity added through Add is drawable until Delete or
// RemoveDrawable detaches it.
//
// Manager is not safe for concurrent use; it belongs to the simulation goroutine.
type Manager struct {
	groups   map[string][]*Entity
	drawable []*Entity
	isDrawn  map[*Entity]bool
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		groups:  make(map[string][]*Entity),
		isDrawn: make(map[*Entity]bool),
	}
}

// Add appends e to the named group and to the drawable collection.
//
// Postcondition: e is in Objects(group) exactly once and in Drawable().
func (m *Manager) Add(group string, e *Entity) {
	if !m.Contains(group, e) {
		m.groups[group] = append(m.groups[group], e)
	}
	m.AddDrawable(e)
}

// Remove detaches e from the named group only, leaving it drawable. Used when
// an entity is claimed but still on the map.
//
// Postcondition: Returns false if e was not in the group.
func (m *Manager) Remove(group string, e *Entity) bool {
	members := m.groups[group]
	for i, member := range members {
		if member == e {
			m.groups[group] = append(members[:i:i], members[i+1:]...)
			return true
		}
	}
	return false
}

// Delete removes e from the named group and from the drawable collection.
// Absent entities are ignored.
func (m *Manager) Delete(group string, e *Entity) {
	m.Remove(group, e)
	m.RemoveDrawable(e)
}

// Contains reports whether e is a member of group.
func (m *Manager) Contains(group string, e *Entity) bool {
	for _, member := range m.groups[group] {
		if member == e {
			return true
		}
	}
	return false
}

// Objects returns a snapshot of the group's members in insertion order.
//
// Postcondition: Returns a non-nil slice; empty for an unknown group.
func (m *Manager) Objects(group string) []*Entity {
	members := m.groups[group]
	out := make([]*Entity, len(members))
	copy(out, members)
	return out
}

// AddDrawable adds e to the drawable collection only.
func (m *Manager) AddDrawable(e *Entity) {
	if m.isDrawn[e] {
		return
	}
	m.isDrawn[e] = true
	m.drawable = append(m.drawable, e)
}

// RemoveDrawable removes e from the drawable collection only.
func (m *Manager) RemoveDrawable(e *Entity) {
	if !m.isDrawn[e] {
		return
	}
	delete(m.isDrawn, e)
	for i, d := range m.drawable {
		if d == e {
			m.drawable = append(m.drawable[:i:i], m.drawable[i+1:]...)
			return
		}
	}
}

// IsDrawable reports whether e is in the drawable collection.
func (m *Manager) IsDrawable(e *Entity) bool { return m.isDrawn[e] }

// Drawable returns a snapshot of the drawable collection in insertion order,
// which is the update order.
func (m *Manager) Drawable() []*Entity {
	out := make([]*Entity, len(m.drawable))
	copy(out, m.drawable)
	return out
}

// DrawOrder returns the drawable collection sorted by layer, lowest first,
// keeping insertion order within a layer.
func (m *Manager) DrawOrder() []*Entity {
	out := m.Drawable()
	sort.SliceStable(out, func(i, j int) bool { return out[i].layer < out[j].layer })
	return out
}

// At returns the members of group standing on cell c.
func (m *Manager) At(group string, c grid.Cell) []*Entity {
	var out []*Entity
	for _, e := range m.groups[group] {
		if e.coord == c {
			out = append(out, e)
		}
	}
	return out
}

// Occupied reports whether any drawable entity stands on c.
func (m *Manager) Occupied(c grid.Cell) bool {
	for _, e := range m.drawable {
		if e.coord == c {
			return true
		}
	}
	return false
}

// Coords returns the cells of the given entities, index-aligned.
func Coords(es []*Entity) []grid.Cell {
	out := make([]grid.Cell, len(es))
	for i, e := range es {
		out[i] = e.coord
	}
	return out
}
