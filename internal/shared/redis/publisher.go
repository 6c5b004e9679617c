package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"tinyplanet-server/internal/game"
	apperrors "tinyplanet-server/internal/shared/errors"
)

type snapshotStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// SnapshotPublisher keeps the latest game snapshot under a key and announces
// each one on a pub/sub channel.
type SnapshotPublisher struct {
	store   snapshotStore
	key     string
	channel string
	logger  *slog.Logger
}

func NewSnapshotPublisher(client *Client, key, channel string) *SnapshotPublisher {
	return newSnapshotPublisher(client, key, channel)
}

func newSnapshotPublisher(store snapshotStore, key, channel string) *SnapshotPublisher {
	return &SnapshotPublisher{
		store:   store,
		key:     key,
		channel: channel,
		logger:  slog.With("component", "redis", "key", key, "channel", channel),
	}
}

func (p *SnapshotPublisher) Publish(ctx context.Context, snapshot game.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := p.store.Set(ctx, p.key, data, 0).Err(); err != nil {
		return apperrors.WrapExternal("failed to store snapshot", err)
	}

	receivers, err := p.store.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return apperrors.WrapExternal("failed to publish snapshot", err)
	}

	p.logger.Debug("Snapshot published", "operation", "publish", "tick", snapshot.Tick, "receivers", receivers)
	return nil
}

// Latest returns the last stored snapshot. ok is false when none was stored yet.
func (p *SnapshotPublisher) Latest(ctx context.Context) (game.Snapshot, bool, error) {
	var snapshot game.Snapshot

	data, err := p.store.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return snapshot, false, nil
	}
	if err != nil {
		return snapshot, false, apperrors.WrapExternal("failed to read snapshot", err)
	}

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, true, nil
}
