package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"tinyplanet-server/internal/grid"
	"tinyplanet-server/internal/planet"
	"tinyplanet-server/internal/poi"
	"tinyplanet-server/internal/power"
	"tinyplanet-server/internal/resources"
	"tinyplanet-server/internal/surface"
	"tinyplanet-server/internal/tile"
)

type queued struct {
	seq uint64
	cmd Command
}

// Game is the simulation context. It is not safe for concurrent use; one
// driver owns it and every mutation happens inside Step.
type Game struct {
	settings Settings
	catalog  *tile.Catalog

	planet *planet.Planet
	grid   *grid.Grid
	ledger *resources.Ledger
	pois   *poi.Field
	rng    *rand.Rand

	tick    uint64
	seq     uint64
	pending []queued
}

// New builds a game on a freshly generated planet.
func New(settings Settings, catalog *tile.Catalog) (*Game, error) {
	if settings.MaxCableLength <= 0 {
		return nil, fmt.Errorf("max cable length must be positive")
	}
	if settings.HandDamage <= 0 {
		return nil, fmt.Errorf("hand damage must be positive")
	}
	if err := poi.ValidateRules(settings.POIRules); err != nil {
		return nil, fmt.Errorf("invalid point of interest rules: %w", err)
	}

	g := &Game{
		settings: settings,
		catalog:  catalog,
		ledger:   resources.NewLedger(settings.StartingResources),
	}
	if err := g.setup(settings.Surface); err != nil {
		return nil, err
	}
	return g, nil
}

// setup generates the planet and everything derived from it. On error the
// game is left exactly as it was.
func (g *Game) setup(cfg surface.Config) error {
	p, err := planet.New(cfg, g.settings.TileSize)
	if err != nil {
		return err
	}
	pois, err := poi.Generate(cfg.Seed, p.TilePlaces(), g.settings.POIFrequency, g.settings.POIRules)
	if err != nil {
		return err
	}

	g.planet = p
	g.pois = pois
	g.rng = rand.New(rand.NewPCG(uint64(cfg.Seed), 0x5eed))
	if g.grid == nil {
		g.grid = grid.New(p.Space(), g.catalog)
	} else {
		g.grid.Reset(p.Space())
	}

	if idx := g.settings.LandingIndex; idx >= 0 && idx < p.TilePlaces() {
		if g.grid.Validate(tile.KindLandedRocket, idx) == nil {
			g.grid.Insert(tile.KindLandedRocket, idx)
		}
	}
	return nil
}

func (g *Game) Planet() *planet.Planet { return g.planet }

func (g *Game) Grid() *grid.Grid { return g.grid }

func (g *Game) Ledger() *resources.Ledger { return g.ledger }

func (g *Game) PointsOfInterest() *poi.Field { return g.pois }

func (g *Game) Catalog() *tile.Catalog { return g.catalog }

func (g *Game) Tick() uint64 { return g.tick }

// Pending returns the number of commands waiting for the next tick.
func (g *Game) Pending() int { return len(g.pending) }

// Enqueue schedules cmd for the next Step and returns its sequence number.
func (g *Game) Enqueue(cmd Command) uint64 {
	g.seq++
	g.pending = append(g.pending, queued{seq: g.seq, cmd: cmd})
	return g.seq
}

// Step advances the simulation by one tick: queued commands are applied in
// order, every generator distributes against the resulting graph, credits are
// applied with clamping, then working tiles spend their energy.
func (g *Game) Step() TickReport {
	report := TickReport{Tick: g.tick}

	pending := g.pending
	g.pending = nil
	for _, q := range pending {
		result, err := g.Execute(q.cmd)
		report.Outcomes = append(report.Outcomes, Outcome{Seq: q.seq, Result: result, Err: err})
	}

	var sources []power.Source
	for _, t := range g.grid.Tiles() {
		spec := g.catalog.MustSpec(t.Kind)
		if spec.IsGenerator() {
			sources = append(sources, power.Source{ID: t.ID, Output: spec.OutputAt(t.Level)})
		}
	}
	report.Generators = len(sources)

	credits := power.Compute(g.grid, g.catalog, sources)
	report.Power = power.Apply(g.grid, g.catalog, credits)

	report.Mined = g.work()

	g.tick++
	return report
}

// work lets every working tile mine one unit from a point of interest in
// range, paying its work cost out of stored energy.
func (g *Game) work() []MiningEvent {
	var events []MiningEvent
	for _, t := range g.grid.Tiles() {
		spec := g.catalog.MustSpec(t.Kind)
		if !spec.Works() || g.tick%uint64(spec.WorkEvery) != 0 {
			continue
		}
		if t.Energy < spec.WorkCost {
			continue
		}

		var targets []poi.PointOfInterest
		for _, p := range g.pois.InRadius(g.planet.Space(), t.Index, spec.WorkRange) {
			for _, kind := range spec.Interacts {
				if p.Kind == kind {
					targets = append(targets, p)
					break
				}
			}
		}
		if len(targets) == 0 {
			continue
		}

		target := targets[g.rng.IntN(len(targets))]
		hit, ok := g.pois.Damage(target.Index, target.Kind, 1)
		if !ok {
			continue
		}

		t.Energy -= spec.WorkCost
		resource := target.Kind.Resource()
		g.ledger.Add(resource, hit.Taken)
		events = append(events, MiningEvent{
			Tile:     t.ID,
			Index:    target.Index,
			Kind:     target.Kind,
			Resource: resource,
			Depleted: hit.Depleted,
		})
	}
	return events
}

// Execute applies cmd immediately. Step uses it for queued commands.
func (g *Game) Execute(cmd Command) (Result, error) {
	result := Result{Command: cmd.Name()}

	switch c := cmd.(type) {
	case Place:
		view, err := g.place(c)
		result.Tile = view
		return result, err
	case Remove:
		t, ok := g.grid.Tile(c.ID)
		if !ok {
			return result, &grid.UnknownTileError{ID: c.ID}
		}
		view := g.view(t)
		g.grid.Remove(c.ID)
		result.Removed = &view
		return result, nil
	case Upgrade:
		view, err := g.upgrade(c)
		result.Tile = view
		return result, err
	case Connect:
		return result, g.connect(c)
	case Disconnect:
		return result, g.grid.Disconnect(c.A, c.B)
	case Harvest:
		h, err := g.harvest(c)
		result.Harvest = h
		return result, err
	case Reconfigure:
		if err := g.setup(c.Config); err != nil {
			return result, err
		}
		summary := g.planet.Summary()
		result.Planet = &summary
		return result, nil
	}
	return result, &CommandError{Command: cmd.Name(), Message: "unsupported command"}
}

func (g *Game) place(c Place) (*TileView, error) {
	if rej := g.grid.Validate(c.Kind, c.Index); rej != nil {
		return nil, rej
	}

	spec := g.catalog.MustSpec(c.Kind)
	if err := g.ledger.TrySpend(spec.Cost); err != nil {
		return nil, spendRejection(err)
	}

	view := g.view(g.grid.Insert(c.Kind, c.Index))
	return &view, nil
}

func (g *Game) upgrade(c Upgrade) (*TileView, error) {
	t, ok := g.grid.Tile(c.ID)
	if !ok {
		return nil, &grid.UnknownTileError{ID: c.ID}
	}

	spec := g.catalog.MustSpec(t.Kind)
	cost, ok := spec.UpgradeCost(t.Level)
	if !ok {
		return nil, &CommandError{Command: "upgrade", Message: fmt.Sprintf("%s is already at its highest level", spec.Name)}
	}
	if err := g.ledger.TrySpend(cost); err != nil {
		return nil, spendRejection(err)
	}
	if err := g.grid.Upgrade(c.ID); err != nil {
		return nil, err
	}

	view := g.view(t)
	return &view, nil
}

func (g *Game) connect(c Connect) error {
	a, ok := g.grid.Tile(c.A)
	if !ok {
		return &grid.UnknownTileError{ID: c.A}
	}
	b, ok := g.grid.Tile(c.B)
	if !ok {
		return &grid.UnknownTileError{ID: c.B}
	}
	if c.A == c.B {
		return &CommandError{Command: "connect", Message: "a tile cannot be connected to itself"}
	}

	length := g.cableLength(a, b)
	if length > g.settings.MaxCableLength {
		return &grid.Rejection{
			Reason:   grid.ReasonOutOfRange,
			Blocking: []tile.ID{c.B},
			Detail:   fmt.Sprintf("cable of length %.1f exceeds %.1f", length, g.settings.MaxCableLength),
		}
	}
	return g.grid.Connect(c.A, c.B)
}

// cableLength is the straight distance between the bases of two tiles.
func (g *Game) cableLength(a, b *tile.Tile) float32 {
	pa := g.planet.IndexToTransform(a.Index, 0, 0, g.catalog.MustSpec(a.Kind).Width)
	pb := g.planet.IndexToTransform(b.Index, 0, 0, g.catalog.MustSpec(b.Kind).Width)
	return pa.Position.Distance(pb.Position)
}

func (g *Game) harvest(c Harvest) (*HarvestResult, error) {
	if !g.planet.InBounds(c.Index) {
		return nil, &CommandError{Command: "harvest", Message: fmt.Sprintf("index %d is outside [0, %d)", c.Index, g.planet.TilePlaces())}
	}

	kind := c.Kind
	if kind == "" {
		here := g.pois.At(c.Index)
		if len(here) == 0 {
			return nil, &CommandError{Command: "harvest", Message: fmt.Sprintf("nothing to harvest at %d", c.Index)}
		}
		kind = here[0].Kind
	}

	hit, ok := g.pois.Damage(c.Index, kind, g.settings.HandDamage)
	if !ok {
		return nil, &CommandError{Command: "harvest", Message: fmt.Sprintf("no %s at %d", kind, c.Index)}
	}

	result := &HarvestResult{Hit: hit, Resource: kind.Resource()}
	if hit.Depleted {
		if rule, found := g.rule(kind); found {
			result.Dropped = rule.DropMin
			if spread := rule.DropMax - rule.DropMin; spread > 0 {
				result.Dropped += g.rng.IntN(spread + 1)
			}
		}
		g.ledger.Add(result.Resource, result.Dropped)
	}
	return result, nil
}

func (g *Game) rule(kind poi.Kind) (poi.Rule, bool) {
	for _, r := range g.settings.POIRules {
		if r.Kind == kind {
			return r, true
		}
	}
	return poi.Rule{}, false
}

// Preview reports what placing kind at index would do. It changes nothing.
func (g *Game) Preview(kind tile.Kind, index int) PreviewResult {
	result := PreviewResult{Kind: kind, Index: index}

	spec, ok := g.catalog.Spec(kind)
	if !ok || !g.planet.InBounds(index) {
		result.Rejection = g.grid.Validate(kind, index)
		return result
	}

	result.Cost = spec.Cost
	result.Spread = g.planet.Space().Spread(spec.Width, index)
	placement := g.planet.IndexToTransform(index, 0, spec.Depth, spec.Width)
	result.Placement = &placement

	for _, p := range g.pois.InRadius(g.planet.Space(), index, spec.WorkRange) {
		for _, k := range spec.Interacts {
			if p.Kind == k {
				result.Interacts = append(result.Interacts, p)
				break
			}
		}
	}

	result.Rejection = g.grid.Validate(kind, index)
	if result.Rejection == nil {
		var insufficient *resources.InsufficientError
		if err := g.ledger.CanAfford(spec.Cost); errors.As(err, &insufficient) {
			result.Rejection = grid.FromInsufficient(insufficient)
		}
	}
	result.Valid = result.Rejection == nil
	return result
}

// Snapshot copies out the current state.
func (g *Game) Snapshot() Snapshot {
	tiles := g.grid.Tiles()
	views := make([]TileView, 0, len(tiles))
	for _, t := range tiles {
		views = append(views, g.view(t))
	}

	pois := g.pois.All()
	if pois == nil {
		pois = []poi.PointOfInterest{}
	}

	return Snapshot{
		Tick:             g.tick,
		Planet:           g.planet.Summary(),
		Tiles:            views,
		Resources:        g.ledger.Snapshot(),
		PointsOfInterest: pois,
	}
}

// CheckInvariants verifies the tile graph.
func (g *Game) CheckInvariants() error {
	return g.grid.CheckInvariants()
}

func (g *Game) view(t *tile.Tile) TileView {
	spec := g.catalog.MustSpec(t.Kind)
	return TileView{
		ID:          t.ID,
		Kind:        t.Kind,
		Name:        spec.Name,
		Index:       t.Index,
		Level:       t.Level,
		MaxLevel:    spec.MaxLevel(),
		Energy:      t.Energy,
		Capacity:    spec.CapacityAt(t.Level),
		Connections: t.Connections(),
		Spread:      g.planet.Space().Spread(spec.Width, t.Index),
		Placement:   g.planet.IndexToTransform(t.Index, 0, spec.Depth, spec.Width),
	}
}

func spendRejection(err error) error {
	var insufficient *resources.InsufficientError
	if errors.As(err, &insufficient) {
		return grid.FromInsufficient(insufficient)
	}
	return err
}
