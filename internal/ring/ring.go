package ring

import (
	"fmt"
	"sort"
)

// Space is a closed ring of evenly spaced slots numbered [0, Space).
type Space int

// Wrap maps any integer onto the ring.
func (s Space) Wrap(i int) int {
	n := int(s)
	if n <= 0 {
		panic(fmt.Sprintf("ring: degenerate space %d", n))
	}
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

// Distance returns the number of steps between a and b, going whichever way round is shorter.
func (s Space) Distance(a, b int) int {
	d := s.Wrap(a - b)
	if other := int(s) - d; other < d {
		return other
	}
	return d
}

// Around returns every slot within radius steps of center, ordered from
// center-radius to center+radius. Slots repeat when 2*radius+1 exceeds the ring.
func (s Space) Around(center, radius int) []int {
	if radius < 0 {
		return nil
	}

	out := make([]int, 0, 2*radius+1)
	for d := -radius; d <= radius; d++ {
		out = append(out, s.Wrap(center+d))
	}
	return out
}

// Within reports whether b is at most radius steps away from a.
func (s Space) Within(a, radius, b int) bool {
	return s.Distance(a, b) <= radius
}

// Spread returns the ascending set of slots covered by an object of the given
// width anchored at index. Odd widths spread evenly; even widths take the extra
// slot on the right.
func (s Space) Spread(width, index int) []int {
	if width <= 0 {
		panic(fmt.Sprintf("ring: invalid width %d", width))
	}

	left := (width - 1) / 2
	right := width / 2

	seen := make(map[int]struct{}, width)
	out := make([]int, 0, width)
	for d := -left; d <= right; d++ {
		slot := s.Wrap(index + d)
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		out = append(out, slot)
	}

	sort.Ints(out)
	return out
}
