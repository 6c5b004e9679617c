package poi

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"
)

// DefaultRules mirror the stock planet: scattered trees, fewer stones, rare copper.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: KindTree, Probability: 0.35, Health: 50, DropMin: 8, DropMax: 14},
		{Kind: KindStone, Probability: 0.15, Health: 60, DropMin: 2, DropMax: 4},
		{Kind: KindCopper, Probability: 0.05, Health: 40, DropMin: 1, DropMax: 2},
	}
}

// ValidateRules rejects rules that Generate cannot honour.
func ValidateRules(rules []Rule) error {
	for _, r := range rules {
		if !r.Kind.Valid() {
			return fmt.Errorf("rule has unknown kind %q", r.Kind)
		}
		if r.Probability < 0 || r.Probability > 1 || math.IsNaN(r.Probability) {
			return fmt.Errorf("%s probability %v is outside [0, 1]", r.Kind, r.Probability)
		}
		if r.Health <= 0 {
			return fmt.Errorf("%s health must be positive", r.Kind)
		}
		if r.DropMin < 0 || r.DropMax < r.DropMin {
			return fmt.Errorf("%s drop range [%d, %d] is invalid", r.Kind, r.DropMin, r.DropMax)
		}
	}
	return nil
}

// Generate scatters features over places slots. Each rule draws from its own
// noise field and random stream derived from seed, so the result depends only
// on its arguments.
func Generate(seed uint32, places int, frequency float64, rules []Rule) (*Field, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	f := NewField()
	for n, rule := range rules {
		stream := uint64(seed)<<8 | uint64(n)
		noise := opensimplex.New(int64(stream))
		rng := rand.New(rand.NewPCG(uint64(seed), stream))

		for i := 0; i < places; i++ {
			angle := float64(i) / float64(places) * 2 * math.Pi
			x := math.Cos(angle) * frequency
			y := math.Sin(angle) * frequency
			density := (noise.Eval2(x, y) + 1) / 2

			if rng.Float64() < rule.Probability*density {
				f.Add(PointOfInterest{Index: i, Kind: rule.Kind, Health: rule.Health})
			}
		}
	}
	return f, nil
}
