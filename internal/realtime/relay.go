package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	RelayChannel   = "road_treatment:events"
	publishTimeout = 2 * time.Second
	maxBackoff     = 30 * time.Second
)

// Deliverer accepts events that originated on another instance.
type Deliverer interface {
	Deliver(env Envelope)
}

type relayMessage struct {
	InstanceID string          `json:"instance_id"`
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data"`
}

// RedisRelay mirrors events between instances over Redis pub/sub. Each
// instance tags what it publishes and ignores its own messages on the way back.
type RedisRelay struct {
	client     *redis.Client
	local      Deliverer
	instanceID string
}

func NewRedisRelay(client *redis.Client, local Deliverer) *RedisRelay {
	return &RedisRelay{
		client:     client,
		local:      local,
		instanceID: uuid.NewString(),
	}
}

func (r *RedisRelay) InstanceID() string { return r.instanceID }

// Forward publishes env for the other instances.
func (r *RedisRelay) Forward(env Envelope) {
	data, err := json.Marshal(relayMessage{InstanceID: r.instanceID, Event: env.Event, Data: env.Data})
	if err != nil {
		logrus.WithError(err).WithField("event", env.Event).Error("Could not encode relay message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, RelayChannel, data).Err(); err != nil {
		logrus.WithError(err).WithField("event", env.Event).Warn("Relay publish failed")
	}
}

// Run subscribes until ctx is cancelled, reconnecting with exponential backoff.
func (r *RedisRelay) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		err := r.subscribe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logrus.WithError(err).WithFields(logrus.Fields{
			"channel": RelayChannel,
			"backoff": backoff,
		}).Warn("Relay subscription lost, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (r *RedisRelay) subscribe(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, RelayChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", RelayChannel, err)
	}
	logrus.WithFields(logrus.Fields{
		"channel":     RelayChannel,
		"instance_id": r.instanceID,
	}).Info("Relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("relay channel closed")
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var m relayMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		logrus.WithError(err).Warn("Discarding malformed relay message")
		return
	}
	if m.InstanceID == r.instanceID {
		return
	}
	r.local.Deliver(Envelope{Event: m.Event, Data: m.Data})
}
