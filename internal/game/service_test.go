package game

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyplanet-server/internal/tile"
)

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

func (p *recordingPublisher) Publish(_ context.Context, s Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, s)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snapshots)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, publishers ...Publisher) *Service {
	t.Helper()
	g := newGame(t, testSettings())
	return NewService(g, ServiceConfig{TickHz: 200, CommandTimeout: time.Second}, discardLogger(), publishers...)
}

func TestServiceSubmitAppliesOnTick(t *testing.T) {
	pub := &recordingPublisher{}
	s := newService(t, pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	defer s.Stop()

	res, err := s.Submit(ctx, Place{Kind: tile.KindBattery, Index: 7})
	require.NoError(t, err)
	require.NotNil(t, res.Tile)

	snap := s.Snapshot()
	require.Len(t, snap.Tiles, 1)
	assert.Equal(t, res.Tile.ID, snap.Tiles[0].ID)

	_, err = s.Submit(ctx, Place{Kind: tile.KindBattery, Index: 7})
	assert.Error(t, err)

	assert.Eventually(t, func() bool { return pub.count() > 0 }, time.Second, 5*time.Millisecond)

	status := s.Status()
	assert.True(t, status.Running)
	assert.Equal(t, 1, status.Tiles)
	assert.Equal(t, 200, status.TickHz)
}

func TestServiceSubmitWhenStopped(t *testing.T) {
	s := newService(t)

	_, err := s.Submit(context.Background(), Place{Kind: tile.KindBattery, Index: 7})
	assert.ErrorIs(t, err, ErrStopped)

	s.Start(context.Background())
	s.Stop()
	assert.False(t, s.Status().Running)

	_, err = s.Submit(context.Background(), Place{Kind: tile.KindBattery, Index: 7})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestServiceStopsWithContext(t *testing.T) {
	s := newService(t)
	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !s.Status().Running }, time.Second, 5*time.Millisecond)
}

type blockingPublisher struct {
	release chan struct{}
	recordingPublisher
}

func (p *blockingPublisher) Publish(ctx context.Context, s Snapshot) error {
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.recordingPublisher.Publish(ctx, s)
}

func (p *blockingPublisher) last() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshots[len(p.snapshots)-1]
}

func TestServiceStartConcurrentWithStatus(t *testing.T) {
	s := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer s.Stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = s.Status()
		}
	}()
	wg.Wait()

	status := s.Status()
	assert.True(t, status.Running)
	assert.False(t, status.Started.IsZero())
}

func TestServiceTicksWhilePublisherBlocks(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	s := newService(t, pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	defer s.Stop()

	assert.Eventually(t, func() bool { return s.Tick() >= 20 }, 500*time.Millisecond, 5*time.Millisecond)

	close(pub.release)
	assert.Eventually(t, func() bool { return pub.count() > 0 && pub.last().Tick > 10 }, time.Second, 5*time.Millisecond)
}

func TestServiceStepWithoutLoop(t *testing.T) {
	pub := &recordingPublisher{}
	g := newGame(t, testSettings())
	s := NewService(g, ServiceConfig{PublishEvery: 2}, discardLogger(), pub)

	for i := 0; i < 4; i++ {
		s.Step(context.Background())
	}

	assert.Equal(t, 2, pub.count())
	assert.Equal(t, uint64(4), s.Status().Tick)
	assert.Equal(t, uint64(4), s.Tick())
	assert.False(t, s.Running())
}

func TestServiceAddPublisher(t *testing.T) {
	first := &recordingPublisher{}
	second := &recordingPublisher{}
	s := NewService(newGame(t, testSettings()), ServiceConfig{}, discardLogger(), first)
	s.AddPublisher(second)

	s.Step(context.Background())

	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
}

func TestServiceReads(t *testing.T) {
	s := newService(t)

	p := s.CurrentPlanet()
	require.NotNil(t, p)
	assert.Equal(t, 94, p.TilePlaces())

	preview := s.PreviewAngle(tile.KindBattery, 3*p.AngularStep()+p.AngularStep()/2)
	assert.Equal(t, 3, preview.Index)
	assert.True(t, preview.Valid)

	assert.Len(t, s.Catalog(), len(tile.Kinds()))
}
