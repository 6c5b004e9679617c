package power

import (
	"slices"

	"tinyplanet-server/internal/tile"
)

// Network is the read side of the tile graph the distribution walks.
type Network interface {
	Tile(id tile.ID) (*tile.Tile, bool)
}

// Credits is energy owed to receivers, collected before anything is applied.
type Credits map[tile.ID]float32

// Merge adds every credit of other into c.
func (c Credits) Merge(other Credits) {
	for id, amount := range other {
		c[id] += amount
	}
}

// Total sums all credits.
func (c Credits) Total() float32 {
	var sum float32
	for _, amount := range c {
		sum += amount
	}
	return sum
}

// Source is a generator and the energy it produces this tick.
type Source struct {
	ID     tile.ID
	Output float32
}

// DistributeEnergy walks every tile reachable from generator and splits
// output evenly between the receivers found. Each tile is visited once, so
// cycles terminate. Nothing is credited when no receiver is reachable.
func DistributeEnergy(net Network, catalog *tile.Catalog, generator tile.ID, output float32) Credits {
	credits := make(Credits)
	if output <= 0 {
		return credits
	}
	if _, ok := net.Tile(generator); !ok {
		return credits
	}

	visited := map[tile.ID]struct{}{generator: {}}
	stack := []tile.ID{generator}
	var receivers []tile.ID

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t, ok := net.Tile(id)
		if !ok {
			continue
		}
		if catalog.MustSpec(t.Kind).IsReceiver() {
			receivers = append(receivers, id)
		}

		for _, next := range t.Connections() {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}

	if len(receivers) == 0 {
		return credits
	}

	share := output / float32(len(receivers))
	for _, id := range receivers {
		credits[id] += share
	}
	return credits
}

// Compute runs the distribution for every source against the graph as it is now.
func Compute(net Network, catalog *tile.Catalog, sources []Source) Credits {
	total := make(Credits)
	for _, src := range sources {
		total.Merge(DistributeEnergy(net, catalog, src.ID, src.Output))
	}
	return total
}

// Report summarises one application of credits.
type Report struct {
	Credited  float32 `json:"credited"`
	Discarded float32 `json:"discarded"`
}

// Apply adds credits to the receivers, clamping each at its capacity. Energy
// above capacity is thrown away. Credits for tiles that no longer exist are
// discarded too.
func Apply(net Network, catalog *tile.Catalog, credits Credits) Report {
	ids := make([]tile.ID, 0, len(credits))
	for id := range credits {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var report Report
	for _, id := range ids {
		amount := credits[id]
		t, ok := net.Tile(id)
		if !ok {
			report.Discarded += amount
			continue
		}

		capacity := catalog.MustSpec(t.Kind).CapacityAt(t.Level)
		room := max(capacity-t.Energy, 0)
		taken := min(amount, room)

		t.Energy += taken
		report.Credited += taken
		report.Discarded += amount - taken
	}
	return report
}
