// Package eventstream forwards environment lifecycle events onto a
// watermill message bus, giving external consumers (trace sinks, UIs,
// recorders) a feed of everything the environment does without touching
// the agent-facing observation log.
package eventstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"

	"github.com/jonwraymond/debuggym/gym"
)

// DefaultTopic is the topic lifecycle events are published on when none
// is configured.
const DefaultTopic = "debuggym.events"

// Envelope is the JSON payload carried by every published message.
type Envelope struct {
	Event  string         `json:"event"`
	Source string         `json:"source"`
	Data   map[string]any `json:"data,omitempty"`
	Time   time.Time      `json:"time"`
}

// Bridge implements the handler interface of every lifecycle event and
// republishes each notification as a JSON message. It never contributes
// observations, and publish failures are logged and swallowed: tracing
// must not abort the episode being traced.
type Bridge struct {
	publisher message.Publisher
	topic     string
}

// New returns a bridge publishing to topic on publisher. An empty topic
// selects DefaultTopic.
func New(publisher message.Publisher, topic string) *Bridge {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Bridge{publisher: publisher, topic: topic}
}

// Topic returns the topic the bridge publishes on.
func (b *Bridge) Topic() string { return b.topic }

// Attach subscribes the bridge to every lifecycle event of hooks.
func (b *Bridge) Attach(hooks *gym.Hooks) error {
	for _, event := range gym.AllEvents() {
		if err := hooks.Subscribe(event, b); err != nil {
			return err
		}
	}
	return nil
}

// Detach removes the bridge from every lifecycle event of hooks.
func (b *Bridge) Detach(hooks *gym.Hooks) {
	for _, event := range gym.AllEvents() {
		hooks.Unsubscribe(event, b)
	}
}

func (b *Bridge) publish(n gym.Notification) {
	payload, err := json.Marshal(Envelope{
		Event:  string(n.Event),
		Source: n.Source,
		Data:   n.Data,
		Time:   time.Now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("event", string(n.Event)).Msg("failed to encode lifecycle event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event", string(n.Event))
	if err := b.publisher.Publish(b.topic, msg); err != nil {
		log.Warn().Err(err).Str("topic", b.topic).Msg("failed to publish lifecycle event")
	}
}

func (b *Bridge) OnEnvStart(_ context.Context, n gym.Notification) (gym.Observation, error) {
	b.publish(n)
	return gym.Observation{}, nil
}

func (b *Bridge) OnEnvReset(_ context.Context, n gym.Notification) (gym.Observation, error) {
	b.publish(n)
	return gym.Observation{}, nil
}

func (b *Bridge) OnEnvStep(_ context.Context, n gym.Notification) (gym.Observation, error) {
	b.publish(n)
	return gym.Observation{}, nil
}

func (b *Bridge) OnRewriteSuccess(_ context.Context, n gym.Notification) (gym.Observation, error) {
	b.publish(n)
	return gym.Observation{}, nil
}

func (b *Bridge) OnRewriteFail(_ context.Context, n gym.Notification) (gym.Observation, error) {
	b.publish(n)
	return gym.Observation{}, nil
}

func (b *Bridge) OnSwitchTerminal(_ context.Context, n gym.Notification) (gym.Observation, error) {
	b.publish(n)
	return gym.Observation{}, nil
}
