package poi

import (
	"sort"

	"tinyplanet-server/internal/ring"
)

// Field holds every feature on the planet, grouped by slot.
type Field struct {
	bySlot map[int][]PointOfInterest
}

func NewField() *Field {
	return &Field{bySlot: make(map[int][]PointOfInterest)}
}

// Add places p at its slot, after any features already there.
func (f *Field) Add(p PointOfInterest) {
	f.bySlot[p.Index] = append(f.bySlot[p.Index], p)
}

// At returns a copy of the features at index.
func (f *Field) At(index int) []PointOfInterest {
	return append([]PointOfInterest(nil), f.bySlot[index]...)
}

// InRadius returns the features within radius slots of index, ordered by slot.
func (f *Field) InRadius(space ring.Space, index, radius int) []PointOfInterest {
	seen := make(map[int]struct{})
	var out []PointOfInterest
	for _, slot := range space.Around(index, radius) {
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		out = append(out, f.bySlot[slot]...)
	}
	return out
}

// Damage takes up to amount health from the first feature of kind at index.
// A feature that reaches zero health is removed. ok is false when there is
// nothing of that kind at the slot.
func (f *Field) Damage(index int, kind Kind, amount int) (hit Hit, ok bool) {
	list := f.bySlot[index]
	for i := range list {
		if list[i].Kind != kind {
			continue
		}

		taken := min(amount, list[i].Health)
		list[i].Health -= taken
		hit = Hit{Kind: kind, Taken: taken, Health: list[i].Health}

		if list[i].Health <= 0 {
			hit.Depleted = true
			list = append(list[:i], list[i+1:]...)
			if len(list) == 0 {
				delete(f.bySlot, index)
			} else {
				f.bySlot[index] = list
			}
		}
		return hit, true
	}
	return Hit{}, false
}

// All returns every feature ordered by slot, then by insertion.
func (f *Field) All() []PointOfInterest {
	slots := make([]int, 0, len(f.bySlot))
	for slot := range f.bySlot {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	var out []PointOfInterest
	for _, slot := range slots {
		out = append(out, f.bySlot[slot]...)
	}
	return out
}

// Len returns the number of features.
func (f *Field) Len() int {
	n := 0
	for _, list := range f.bySlot {
		n += len(list)
	}
	return n
}
