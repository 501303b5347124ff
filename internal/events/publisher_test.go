package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"codebuds/internal/models"
	"codebuds/internal/utils"
)

// setupTestRedis creates a miniredis instance and a redis client for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestPublishRoomEvent(t *testing.T) {
	_, rdb := setupTestRedis(t)
	pub := NewPublisherWithClient(rdb, utils.NewNopLogger())

	sub := rdb.Subscribe(context.Background(), Channel)
	t.Cleanup(func() { sub.Close() })
	// Wait for the subscription to be established.
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub.Publish(models.RoomEvent{
		Type:         models.EventHostChanged,
		RoomID:       "r1",
		ConnectionID: "c2",
		Username:     "bob",
	})

	select {
	case msg := <-sub.Channel():
		var ev models.RoomEvent
		assert.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, models.EventHostChanged, ev.Type)
		assert.Equal(t, "r1", ev.RoomID)
		assert.Equal(t, "bob", ev.Username)
		assert.Equal(t, pub.InstanceID(), ev.InstanceID)
		assert.NotEmpty(t, ev.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published event")
	}
}

func TestPublishSurvivesRedisDown(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	pub := NewPublisherWithClient(rdb, utils.NewNopLogger())

	mr.Close()
	// Best-effort: a publish failure must not panic or propagate.
	pub.Publish(models.RoomEvent{Type: models.EventRoomExpired, RoomID: "r1"})
}

func TestInstanceIDsAreUnique(t *testing.T) {
	_, rdb := setupTestRedis(t)
	a := NewPublisherWithClient(rdb, utils.NewNopLogger())
	b := NewPublisherWithClient(rdb, utils.NewNopLogger())
	assert.NotEqual(t, a.InstanceID(), b.InstanceID())
}
