package tile

import (
	"slices"
)

// Tile is a placed structure. Its connections are only ever changed in pairs
// by the grid that owns it, so edges stay symmetric.
type Tile struct {
	ID     ID      `json:"id"`
	Kind   Kind    `json:"kind"`
	Index  int     `json:"index"`
	Level  int     `json:"level"`
	Energy float32 `json:"energy"`

	connections map[ID]struct{}
}

func New(id ID, kind Kind, index int) *Tile {
	return &Tile{
		ID:          id,
		Kind:        kind,
		Index:       index,
		connections: make(map[ID]struct{}),
	}
}

// Connections returns the connected tile ids in ascending order.
func (t *Tile) Connections() []ID {
	out := make([]ID, 0, len(t.connections))
	for id := range t.connections {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// ConnectedTo reports whether t has an edge to other.
func (t *Tile) ConnectedTo(other ID) bool {
	_, ok := t.connections[other]
	return ok
}

// Degree returns the number of edges.
func (t *Tile) Degree() int { return len(t.connections) }

// Link and Unlink change one side of an edge. They exist for the grid's
// paired edge operations and must not be called on their own.
func (t *Tile) Link(other ID) {
	if t.connections == nil {
		t.connections = make(map[ID]struct{})
	}
	t.connections[other] = struct{}{}
}

func (t *Tile) Unlink(other ID) {
	delete(t.connections, other)
}

// Clone returns a deep copy of t.
func (t *Tile) Clone() *Tile {
	c := *t
	c.connections = make(map[ID]struct{}, len(t.connections))
	for id := range t.connections {
		c.connections[id] = struct{}{}
	}
	return &c
}
