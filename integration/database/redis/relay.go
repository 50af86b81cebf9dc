package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/rgwnotify/core/hub"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

// Broadcaster performs the local fan-out of a relayed document.
type Broadcaster interface {
	Broadcast(ctx context.Context, doc []byte, root map[string]any) hub.Stats
}

// PubSubClient is the part of the go-redis API the relay uses.
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

type envelope struct {
	Metadata map[string]any  `json:"metadata"`
	Document json.RawMessage `json:"document"`
}

// Relay spreads broadcasts over a Redis channel so that every instance,
// the publishing one included, delivers them to its own subscribers.
type Relay struct {
	client  PubSubClient
	channel string
	local   Broadcaster
	logger  *slog.Logger
}

type RelayOption func(*Relay)

func WithLogger(l *slog.Logger) RelayOption {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRelay creates a relay on channel that delivers to local.
func NewRelay(client PubSubClient, channel string, local Broadcaster, opts ...RelayOption) *Relay {
	r := &Relay{
		client:  client,
		channel: channel,
		local:   local,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("relay"), slog.String("channel", channel))
	return r
}

// Publish sends doc and its filter root to every instance.
func (r *Relay) Publish(ctx context.Context, doc []byte, root map[string]any) error {
	if !json.Valid(doc) {
		return fmt.Errorf("%w: document is not JSON", ErrInvalidEnvelope)
	}
	payload, err := json.Marshal(envelope{Metadata: root, Document: doc})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Run consumes the channel until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.InfoContext(ctx, "relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return ErrSubscriptionClosed
			}
			if _, err := r.Deliver(ctx, []byte(msg.Payload)); err != nil {
				r.logger.ErrorContext(ctx, "relay message dropped", logger.Error(err))
			}
		}
	}
}

// Deliver decodes one relayed message and broadcasts it locally.
func (r *Relay) Deliver(ctx context.Context, payload []byte) (hub.Stats, error) {
	env, err := decodeEnvelope(payload)
	if err != nil {
		return hub.Stats{}, err
	}
	return r.local.Broadcast(ctx, env.Document, env.Metadata), nil
}

func decodeEnvelope(payload []byte) (envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if len(env.Document) == 0 {
		return envelope{}, fmt.Errorf("%w: missing document", ErrInvalidEnvelope)
	}
	for k, v := range env.Metadata {
		env.Metadata[k] = normalizeNumber(v)
	}
	return env, nil
}

// normalizeNumber restores int64 for integral values so filters compare
// relayed metadata the same way as locally produced metadata.
func normalizeNumber(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case map[string]any:
		for k, vv := range n {
			n[k] = normalizeNumber(vv)
		}
		return n
	case []any:
		for i, vv := range n {
			n[i] = normalizeNumber(vv)
		}
		return n
	default:
		return v
	}
}
