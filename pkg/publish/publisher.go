// Package publish announces upcoming events to consumers outside the process.
// The Redis publisher keeps one key per observer and event holding the next
// occurrence and broadcasts every announcement on a channel.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/orb/pkg/redis"
)

var (
	// ErrClientRequired is returned by NewRedis without a client
	ErrClientRequired = errors.New("redis client is required")
)

// Announcement is the next occurrence of one event for one observer
type Announcement struct {
	Observer   string    `json:"observer"`
	Body       string    `json:"body"`
	Event      string    `json:"event"`
	Time       time.Time `json:"time"`
	ComputedAt time.Time `json:"computedAt"`
}

// Publisher delivers announcements
type Publisher interface {
	Publish(ctx context.Context, announcements []Announcement) error
}

// RedisPublisher writes announcements to Redis
type RedisPublisher struct {
	client *r.Client
	config *redis.Config
	log    logrus.FieldLogger
}

// NewRedis creates a publisher on client; keys are prefixed per cfg
func NewRedis(client *r.Client, cfg *redis.Config, log logrus.FieldLogger) (*RedisPublisher, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	return &RedisPublisher{
		client: client,
		config: cfg,
		log:    log.WithField("component", "publish"),
	}, nil
}

// EventKey is the key holding the next occurrence of event for observer
func (p *RedisPublisher) EventKey(observer, event string) string {
	return p.config.PrefixKey("events", observer, event)
}

// Channel is the channel every announcement is broadcast on
func (p *RedisPublisher) Channel() string {
	return p.config.PrefixKey("announcements")
}

// Publish stores and broadcasts announcements in one transaction. A key
// expires once its event has passed.
func (p *RedisPublisher) Publish(ctx context.Context, announcements []Announcement) error {
	if len(announcements) == 0 {
		return nil
	}

	_, err := p.client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		for _, a := range announcements {
			payload, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("failed to encode announcement: %w", err)
			}

			ttl := time.Until(a.Time)
			if ttl <= 0 {
				continue
			}

			pipe.Set(ctx, p.EventKey(a.Observer, a.Event), a.Time.UTC().Format(time.RFC3339), ttl)
			pipe.Publish(ctx, p.Channel(), payload)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish announcements: %w", err)
	}

	p.log.WithField("count", len(announcements)).Debug("Published announcements")

	return nil
}

// Next reads the stored next occurrence of event for observer. It is the
// consumer side of Publish; ok is false once the key has expired.
func (p *RedisPublisher) Next(ctx context.Context, observer, event string) (time.Time, bool, error) {
	value, err := p.client.Get(ctx, p.EventKey(observer, event)).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return time.Time{}, false, nil
		}

		return time.Time{}, false, fmt.Errorf("failed to read %s: %w", event, err)
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed %s value %q: %w", event, value, err)
	}

	return t, true, nil
}

var _ Publisher = (*RedisPublisher)(nil)
