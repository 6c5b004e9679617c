package grid

import (
	"fmt"
	"slices"

	"tinyplanet-server/internal/ring"
	"tinyplanet-server/internal/tile"
)

// Grid owns every placed tile, the slot occupancy index and the edges between tiles.
type Grid struct {
	space   ring.Space
	catalog *tile.Catalog

	tiles     map[tile.ID]*tile.Tile
	occupancy map[int]tile.ID
	nextID    tile.ID
}

func New(space ring.Space, catalog *tile.Catalog) *Grid {
	return &Grid{
		space:     space,
		catalog:   catalog,
		tiles:     make(map[tile.ID]*tile.Tile),
		occupancy: make(map[int]tile.ID),
		nextID:    1,
	}
}

// Space returns the slot ring the grid lives on.
func (g *Grid) Space() ring.Space { return g.space }

func (g *Grid) Catalog() *tile.Catalog { return g.catalog }

// Reset drops every tile and moves the grid onto a new ring. Tile ids keep
// increasing so stale ids never alias new tiles.
func (g *Grid) Reset(space ring.Space) {
	g.space = space
	g.tiles = make(map[tile.ID]*tile.Tile)
	g.occupancy = make(map[int]tile.ID)
}

// Tile looks up a placed tile.
func (g *Grid) Tile(id tile.ID) (*tile.Tile, bool) {
	t, ok := g.tiles[id]
	return t, ok
}

// Len returns the number of placed tiles.
func (g *Grid) Len() int { return len(g.tiles) }

// Tiles returns every tile ordered by id.
func (g *Grid) Tiles() []*tile.Tile {
	out := make([]*tile.Tile, 0, len(g.tiles))
	for _, t := range g.tiles {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *tile.Tile) int { return compareID(a.ID, b.ID) })
	return out
}

// OccupantAt returns the id of the tile covering index, if any.
func (g *Grid) OccupantAt(index int) (tile.ID, bool) {
	id, ok := g.occupancy[g.space.Wrap(index)]
	return id, ok
}

// GetTileSpread returns the slots covered by a tile of width anchored at index on a ring of boundary slots.
func GetTileSpread(width, index, boundary int) []int {
	return ring.Space(boundary).Spread(width, index)
}

// TileFits reports whether a tile of width at index would overlap no placed tile.
func (g *Grid) TileFits(width, index int) bool {
	return len(g.overlapping(width, index)) == 0
}

// overlapping returns the ids of placed tiles whose spread meets the candidate's.
func (g *Grid) overlapping(width, index int) []tile.ID {
	candidate := g.space.Spread(width, index)
	radius := g.catalog.MaxWidth() + width

	var blocking []tile.ID
	seen := make(map[tile.ID]struct{})
	for _, slot := range g.space.Around(index, radius) {
		id, ok := g.occupancy[slot]
		if !ok {
			continue
		}
		if _, done := seen[id]; done {
			continue
		}
		seen[id] = struct{}{}

		t := g.tiles[id]
		spread := g.space.Spread(g.catalog.MustSpec(t.Kind).Width, t.Index)
		if intersects(candidate, spread) {
			blocking = append(blocking, id)
		}
	}
	slices.SortFunc(blocking, compareID)
	return blocking
}

// IsKeepingDistanceFrom returns the tiles that violate any of the keep rules
// for a candidate at index. An empty result means the placement keeps its distance.
func (g *Grid) IsKeepingDistanceFrom(keep []tile.KeepDistance, index int) []tile.ID {
	var blocking []tile.ID
	seen := make(map[tile.ID]struct{})
	for _, rule := range keep {
		for _, slot := range g.space.Around(index, rule.Radius) {
			id, ok := g.occupancy[slot]
			if !ok {
				continue
			}
			t := g.tiles[id]
			if t.Kind != rule.Kind || t.Index != slot {
				continue
			}
			if _, done := seen[id]; done {
				continue
			}
			seen[id] = struct{}{}
			blocking = append(blocking, id)
		}
	}
	slices.SortFunc(blocking, compareID)
	return blocking
}

// Validate checks whether kind can be placed at index. It never mutates the
// grid, so it is safe to call for live previews. Resources are not checked here.
func (g *Grid) Validate(kind tile.Kind, index int) *Rejection {
	spec, ok := g.catalog.Spec(kind)
	if !ok {
		return &Rejection{Reason: ReasonOutOfRange, Detail: fmt.Sprintf("unknown tile kind %q", kind)}
	}
	if index < 0 || index >= int(g.space) {
		return &Rejection{Reason: ReasonOutOfRange, Detail: fmt.Sprintf("index %d is outside [0, %d)", index, int(g.space))}
	}
	if !spec.Occupies() {
		return nil
	}
	if spec.Width > int(g.space) {
		return &Rejection{Reason: ReasonOutOfRange, Detail: "tile is wider than the planet"}
	}

	if blocking := g.overlapping(spec.Width, index); len(blocking) > 0 {
		return &Rejection{Reason: ReasonOccupied, Blocking: blocking}
	}
	if blocking := g.IsKeepingDistanceFrom(spec.KeepDistance, index); len(blocking) > 0 {
		return &Rejection{Reason: ReasonTooClose, Blocking: blocking}
	}
	return nil
}

// Insert registers a tile. Callers validate and pay first; inserting over an
// occupied slot is a bug and panics.
func (g *Grid) Insert(kind tile.Kind, index int) *tile.Tile {
	spec := g.catalog.MustSpec(kind)

	id := g.nextID
	g.nextID++
	t := tile.New(id, kind, g.space.Wrap(index))
	g.tiles[id] = t

	if spec.Occupies() {
		for _, slot := range g.space.Spread(spec.Width, t.Index) {
			if other, taken := g.occupancy[slot]; taken {
				panic(fmt.Sprintf("grid: slot %d already held by tile %d", slot, other))
			}
			g.occupancy[slot] = id
		}
	}
	return t
}

// Remove deletes a tile, cuts every edge touching it and frees its slots.
func (g *Grid) Remove(id tile.ID) (*tile.Tile, bool) {
	t, ok := g.tiles[id]
	if !ok {
		return nil, false
	}

	for _, other := range t.Connections() {
		g.unlink(id, other)
	}
	for slot, occupant := range g.occupancy {
		if occupant == id {
			delete(g.occupancy, slot)
		}
	}
	delete(g.tiles, id)
	return t, true
}

// Upgrade raises the level of a tile by one. The id and edges are kept.
func (g *Grid) Upgrade(id tile.ID) error {
	t, ok := g.tiles[id]
	if !ok {
		return &UnknownTileError{ID: id}
	}
	spec := g.catalog.MustSpec(t.Kind)
	if t.Level >= spec.MaxLevel() {
		return fmt.Errorf("%s is already at its highest level %d", spec.Name, t.Level)
	}
	t.Level++
	return nil
}

// Connect adds an undirected edge between a and b.
func (g *Grid) Connect(a, b tile.ID) error {
	if a == b {
		return fmt.Errorf("cannot connect tile %d to itself", a)
	}
	ta, ok := g.tiles[a]
	if !ok {
		return &UnknownTileError{ID: a}
	}
	tb, ok := g.tiles[b]
	if !ok {
		return &UnknownTileError{ID: b}
	}
	ta.Link(b)
	tb.Link(a)
	return nil
}

// Disconnect removes the edge between a and b, if any.
func (g *Grid) Disconnect(a, b tile.ID) error {
	if _, ok := g.tiles[a]; !ok {
		return &UnknownTileError{ID: a}
	}
	if _, ok := g.tiles[b]; !ok {
		return &UnknownTileError{ID: b}
	}
	g.unlink(a, b)
	return nil
}

func (g *Grid) unlink(a, b tile.ID) {
	if t, ok := g.tiles[a]; ok {
		t.Unlink(b)
	}
	if t, ok := g.tiles[b]; ok {
		t.Unlink(a)
	}
}

// CheckInvariants verifies that every edge is symmetric, points at a live
// tile other than its owner, and that occupancy matches tile spreads.
func (g *Grid) CheckInvariants() error {
	for id, t := range g.tiles {
		if t.ID != id {
			return fmt.Errorf("tile stored under %d has id %d", id, t.ID)
		}
		for _, other := range t.Connections() {
			if other == id {
				return fmt.Errorf("tile %d is connected to itself", id)
			}
			peer, ok := g.tiles[other]
			if !ok {
				return fmt.Errorf("tile %d has a dangling edge to %d", id, other)
			}
			if !peer.ConnectedTo(id) {
				return fmt.Errorf("edge %d-%d is one-sided", id, other)
			}
		}
	}

	expected := make(map[int]tile.ID)
	for id, t := range g.tiles {
		spec := g.catalog.MustSpec(t.Kind)
		if !spec.Occupies() {
			continue
		}
		for _, slot := range g.space.Spread(spec.Width, t.Index) {
			if other, dup := expected[slot]; dup {
				return fmt.Errorf("slot %d is covered by tiles %d and %d", slot, other, id)
			}
			expected[slot] = id
		}
	}
	if len(expected) != len(g.occupancy) {
		return fmt.Errorf("occupancy has %d slots, tiles cover %d", len(g.occupancy), len(expected))
	}
	for slot, id := range expected {
		if g.occupancy[slot] != id {
			return fmt.Errorf("slot %d indexed to %d, covered by %d", slot, g.occupancy[slot], id)
		}
	}
	return nil
}

// UnknownTileError is returned for operations on ids that are not placed.
type UnknownTileError struct {
	ID tile.ID
}

func (e *UnknownTileError) Error() string {
	return fmt.Sprintf("tile %d not found", e.ID)
}

func intersects(a, b []int) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

func compareID(a, b tile.ID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
