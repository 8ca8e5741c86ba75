package server

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/tambola/internal/game"
)

func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   -1,
	})
}

func TestRoomChannel(t *testing.T) {
	if got := RoomChannel("ABC234"); got != "tambola:room:ABC234" {
		t.Errorf("channel = %q", got)
	}
}

func TestRelayPublishNeverBlocks(t *testing.T) {
	rdb := deadRedis()
	defer rdb.Close()
	relay := NewRedisRelay(rdb, discardLogger(), 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 20 {
			relay.Publish("A", game.Event{Type: game.EventNumberDrawn, Number: 7})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with nobody draining the queue")
	}
	if got := len(relay.queue); got != 4 {
		t.Errorf("queued = %d, want 4", got)
	}
}

func TestRelayRunSurvivesRedisErrors(t *testing.T) {
	rdb := deadRedis()
	defer rdb.Close()
	relay := NewRedisRelay(rdb, discardLogger(), 8)

	for range 3 {
		relay.Publish("A", game.Event{Type: game.EventChat, Text: "hi"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- relay.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(relay.queue) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("relay did not drain its queue")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("run = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not stop after cancel")
	}

	if err := relay.Check(context.Background()); err == nil {
		t.Error("check against dead redis should fail")
	}
}
