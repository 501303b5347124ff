package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"codebuds/internal/models"
	"codebuds/internal/utils"
)

// Channel carries room lifecycle events for other services (history,
// analytics) and for other instances behind a load balancer.
const Channel = "codebuds:rooms"

// Publisher pushes room lifecycle events to redis, best-effort. Publish
// failures are logged and never affect the session core.
type Publisher struct {
	rdb        *redis.Client
	instanceID string
	log        *utils.Logger
}

func NewPublisher(redisAddr string, log *utils.Logger) *Publisher {
	return NewPublisherWithClient(redis.NewClient(&redis.Options{Addr: redisAddr}), log)
}

func NewPublisherWithClient(rdb *redis.Client, log *utils.Logger) *Publisher {
	return &Publisher{
		rdb:        rdb,
		instanceID: uuid.NewString(),
		log:        log,
	}
}

func (p *Publisher) InstanceID() string { return p.instanceID }

func (p *Publisher) Publish(ev models.RoomEvent) {
	ev.InstanceID = p.instanceID
	ev.Timestamp = time.Now().Format(time.RFC3339)

	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("failed to marshal room event", "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, Channel, data).Err(); err != nil {
		p.log.Warn("failed to publish room event",
			"type", ev.Type, "room", ev.RoomID, "error", err.Error())
	}
}

func (p *Publisher) Close() error { return p.rdb.Close() }
