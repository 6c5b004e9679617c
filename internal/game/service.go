package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"tinyplanet-server/internal/planet"
	"tinyplanet-server/internal/tile"
)

var (
	ErrStopped        = errors.New("simulation is not running")
	ErrCommandTimeout = errors.New("command was not applied in time")
)

// Publisher receives a snapshot after ticks.
type Publisher interface {
	Publish(ctx context.Context, snapshot Snapshot) error
}

type ServiceConfig struct {
	TickHz         int
	CommandTimeout time.Duration
	// PublishEvery is the number of ticks between published snapshots.
	PublishEvery int
}

// Status is the liveness summary of the simulation.
type Status struct {
	Game     string    `json:"game"`
	Tick     uint64    `json:"tick"`
	TickHz   int       `json:"tick_hz"`
	Running  bool      `json:"running"`
	Tiles    int       `json:"tiles"`
	Pending  int       `json:"pending"`
	Started  time.Time `json:"started_at"`
	Planet   uint32    `json:"planet_seed"`
	Slots    int       `json:"slots"`
	Features int       `json:"points_of_interest"`
}

type outbound struct {
	publishers []Publisher
	snapshot   Snapshot
}

// Service drives a Game at a fixed rate. Commands from any goroutine are
// queued and applied by the tick loop; reads take a shared lock and see the
// state between ticks.
type Service struct {
	mu      sync.RWMutex
	game    *Game
	waiters map[uint64]chan Outcome

	cfg          ServiceConfig
	tickInterval time.Duration
	publishers   []Publisher
	logger       *slog.Logger

	// snapshots holds at most the latest snapshot waiting for the publish loop
	snapshots chan outbound

	tickCount atomic.Uint64
	running   atomic.Bool
	startedAt atomic.Int64
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewService(game *Game, cfg ServiceConfig, logger *slog.Logger, publishers ...Publisher) *Service {
	if cfg.TickHz <= 0 {
		cfg.TickHz = 20
	}
	if cfg.PublishEvery <= 0 {
		cfg.PublishEvery = 1
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 2 * time.Second
	}

	logger.Debug("Initializing game service", "tick_hz", cfg.TickHz, "publishers", len(publishers))

	return &Service{
		game:         game,
		waiters:      make(map[uint64]chan Outcome),
		cfg:          cfg,
		tickInterval: time.Second / time.Duration(cfg.TickHz),
		publishers:   publishers,
		logger:       logger,
		snapshots:    make(chan outbound, 1),
		stopChan:     make(chan struct{}),
	}
}

// AddPublisher registers another snapshot receiver.
func (s *Service) AddPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = append(s.publishers, p)
}

// Start launches the tick loop. It stops when ctx ends or Stop is called.
func (s *Service) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.startedAt.Store(time.Now().UnixNano())
	s.logger.Info("Simulation started", "component", "game_service", "tick_interval", s.tickInterval)

	s.wg.Add(2)
	go s.loop(ctx)
	go s.publishLoop(ctx)
}

// Stop halts the tick loop and waits for it to exit.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()
	defer s.running.Store(false)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.failWaiters(ErrStopped)
			s.logger.Info("Simulation stopped", "component", "game_service", "reason", ctx.Err(), "ticks", s.tickCount.Load())
			return
		case <-s.stopChan:
			s.failWaiters(ErrStopped)
			s.logger.Info("Simulation stopped", "component", "game_service", "ticks", s.tickCount.Load())
			return
		case <-ticker.C:
			s.Step(ctx)
		}
	}
}

// Step runs one tick, answers the commands it applied and publishes the result.
func (s *Service) Step(ctx context.Context) TickReport {
	logger := s.logger.With("component", "game_service", "operation", "step")

	s.mu.Lock()
	report := s.game.Step()
	for _, o := range report.Outcomes {
		if ch, ok := s.waiters[o.Seq]; ok {
			ch <- o
			delete(s.waiters, o.Seq)
		}
		if o.Err != nil {
			logger.Debug("Command not applied", "command", o.Result.Command, "error", o.Err)
		} else if o.Result.Planet != nil {
			logger.Info("Planet regenerated",
				"seed", o.Result.Planet.Config.Seed,
				"tile_places", o.Result.Planet.TilePlaces,
				"min_height", o.Result.Planet.MinHeight,
				"max_height", o.Result.Planet.MaxHeight)
		}
	}

	var snapshot *Snapshot
	publishers := s.publishers
	if len(publishers) > 0 && report.Tick%uint64(s.cfg.PublishEvery) == 0 {
		snap := s.game.Snapshot()
		snapshot = &snap
	}
	s.mu.Unlock()

	s.tickCount.Add(1)
	if len(report.Mined) > 0 {
		logger.Debug("Tiles worked points of interest", "tick", report.Tick, "events", len(report.Mined))
	}

	if snapshot != nil {
		if s.running.Load() {
			s.offer(outbound{publishers: publishers, snapshot: *snapshot})
		} else {
			s.publish(ctx, publishers, *snapshot)
		}
	}
	return report
}

// offer hands a snapshot to the publish loop without blocking the tick. A
// snapshot still waiting is replaced by the newer one.
func (s *Service) offer(out outbound) {
	select {
	case s.snapshots <- out:
		return
	default:
	}

	select {
	case stale := <-s.snapshots:
		s.logger.Debug("Dropping unpublished snapshot", "component", "game_service", "tick", stale.snapshot.Tick)
	default:
	}

	select {
	case s.snapshots <- out:
	default:
	}
}

func (s *Service) publishLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case out := <-s.snapshots:
			s.publish(ctx, out.publishers, out.snapshot)
		}
	}
}

func (s *Service) publish(ctx context.Context, publishers []Publisher, snapshot Snapshot) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	for _, p := range publishers {
		if err := p.Publish(ctx, snapshot); err != nil {
			s.logger.Warn("Failed to publish snapshot", "component", "game_service", "tick", snapshot.Tick, "error", err)
		}
	}
}

// Submit queues cmd and waits for the tick that applies it.
func (s *Service) Submit(ctx context.Context, cmd Command) (Result, error) {
	if !s.running.Load() {
		return Result{Command: cmd.Name()}, ErrStopped
	}

	ch := make(chan Outcome, 1)
	s.mu.Lock()
	seq := s.game.Enqueue(cmd)
	s.waiters[seq] = ch
	s.mu.Unlock()

	timer := time.NewTimer(s.cfg.CommandTimeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		return o.Result, o.Err
	case <-ctx.Done():
		s.dropWaiter(seq)
		return Result{Command: cmd.Name()}, ctx.Err()
	case <-timer.C:
		s.dropWaiter(seq)
		return Result{Command: cmd.Name()}, ErrCommandTimeout
	}
}

func (s *Service) dropWaiter(seq uint64) {
	s.mu.Lock()
	delete(s.waiters, seq)
	s.mu.Unlock()
}

func (s *Service) failWaiters(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for seq, ch := range s.waiters {
		ch <- Outcome{Seq: seq, Err: err}
		delete(s.waiters, seq)
	}
}

// Running reports whether the tick loop is active.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Tick returns the number of ticks this service has run.
func (s *Service) Tick() uint64 {
	return s.tickCount.Load()
}

// Snapshot returns the state as of the last tick.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Snapshot()
}

// Preview checks a placement at a slot.
func (s *Service) Preview(kind tile.Kind, index int) PreviewResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Preview(kind, index)
}

// PreviewAngle checks a placement at the slot under angle.
func (s *Service) PreviewAngle(kind tile.Kind, angle float32) PreviewResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Preview(kind, s.game.Planet().RadiansToIndex(angle))
}

// CurrentPlanet returns the planet in play. Planets are immutable, so the
// result stays valid after a reconfiguration replaces it.
func (s *Service) CurrentPlanet() *planet.Planet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Planet()
}

// Catalog lists the behaviour of every tile kind.
func (s *Service) Catalog() []tile.Spec {
	return s.game.Catalog().All()
}

func (s *Service) started() time.Time {
	if n := s.startedAt.Load(); n != 0 {
		return time.Unix(0, n)
	}
	return time.Time{}
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Game:     "Tiny Planet",
		Tick:     s.game.Tick(),
		TickHz:   s.cfg.TickHz,
		Running:  s.running.Load(),
		Tiles:    s.game.Grid().Len(),
		Pending:  s.game.Pending(),
		Started:  s.started(),
		Planet:   s.game.Planet().Config().Seed,
		Slots:    s.game.Planet().TilePlaces(),
		Features: s.game.PointsOfInterest().Len(),
	}
}
