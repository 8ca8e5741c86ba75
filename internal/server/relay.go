package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/tambola/internal/game"
)

// RoomChannel is the Redis channel carrying a room's events.
func RoomChannel(roomID string) string {
	return "tambola:room:" + roomID
}

type relayItem struct {
	roomID string
	data   []byte
}

// RedisRelay republishes room events on Redis so other processes can follow
// a room. Publish only enqueues; Run does the network I/O.
type RedisRelay struct {
	rdb    *redis.Client
	queue  chan relayItem
	logger *slog.Logger
}

func NewRedisRelay(rdb *redis.Client, logger *slog.Logger, size int) *RedisRelay {
	if size <= 0 {
		size = 1024
	}
	return &RedisRelay{
		rdb:    rdb,
		queue:  make(chan relayItem, size),
		logger: logger,
	}
}

// Publish implements game.Notifier. Events are dropped when the queue is full.
func (r *RedisRelay) Publish(roomID string, ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.logger.Error("encoding event for relay", "room", roomID, "error", err)
		return
	}
	select {
	case r.queue <- relayItem{roomID: roomID, data: data}:
	default:
		r.logger.Warn("relay queue full, dropping event", "room", roomID, "type", ev.Type)
	}
}

// Run drains the queue until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case it := <-r.queue:
			if err := r.rdb.Publish(ctx, RoomChannel(it.roomID), it.data).Err(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.logger.Error("relaying event", "room", it.roomID, "error", err)
			}
		}
	}
}

func (r *RedisRelay) Check(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
