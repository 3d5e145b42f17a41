// Package mqtt mirrors the controller onto an MQTT broker: availability and
// state are published retained, settings arrive on the set topic.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"fireplus_bridge/internal/config"
	"fireplus_bridge/internal/logger"
	"fireplus_bridge/internal/models"
	"fireplus_bridge/internal/service"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"

	publishTimeout = 5 * time.Second
	applyTimeout   = 30 * time.Second
	disconnectMS   = 250
)

var errPublishTimeout = errors.New("mqtt publish timed out")

// pahoClient is the part of paho.Client the bridge uses.
type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// Topics derived from the configured prefix.
type Topics struct {
	Availability string
	State        string
	Set          string
}

func TopicsFor(prefix string) Topics {
	return Topics{
		Availability: prefix + "/availability",
		State:        prefix + "/state",
		Set:          prefix + "/set",
	}
}

type Bridge struct {
	client   pahoClient
	topics   Topics
	qos      byte
	controls service.Controls
	log      *logger.Logger

	mu        sync.Mutex
	ctx       context.Context
	available *bool
}

// New builds a bridge with a paho client configured from cfg. The broker
// marks the bridge offline through the last will if the connection drops.
func New(cfg config.MQTTConfig, controls service.Controls, log *logger.Logger) *Bridge {
	b := &Bridge{
		topics:   TopicsFor(cfg.TopicPrefix),
		qos:      cfg.QoS,
		controls: controls,
		log:      log.Named("mqtt"),
		ctx:      context.Background(),
	}
	b.client = paho.NewClient(b.clientOptions(cfg))
	return b
}

func (b *Bridge) clientOptions(cfg config.MQTTConfig) *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetOrderMatters(false).
		SetCleanSession(true).
		SetKeepAlive(30*time.Second).
		SetPingTimeout(10*time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30*time.Second).
		SetWill(b.topics.Availability, payloadOffline, cfg.QoS, true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnect = func(c paho.Client) { b.onConnect() }
	opts.OnConnectionLost = func(c paho.Client, err error) {
		b.log.Warnw("mqtt_connection_lost", "err", err)
	}
	return opts
}

// Connect dials the broker, retrying with exponential backoff until it
// succeeds or ctx is canceled. Each attempt resolves on its own; paho's
// connect retry stays off so a canceled ctx is always observed. ctx also
// bounds commands received later.
func (b *Bridge) Connect(ctx context.Context, start, max time.Duration) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	backoff := start
	for {
		token := b.client.Connect()
		select {
		case <-token.Done():
		case <-ctx.Done():
			b.client.Disconnect(disconnectMS)
			return ctx.Err()
		}
		err := token.Error()
		if err == nil {
			return nil
		}
		b.log.Warnw("mqtt_connect_failed", "err", err, "retry_in", backoff)
		select {
		case <-time.After(backoff):
			backoff *= 2
			if backoff > max {
				backoff = max
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close marks the bridge offline and disconnects.
func (b *Bridge) Close() {
	if err := b.publish(b.topics.Availability, payloadOffline); err != nil {
		b.log.Warnw("mqtt_offline_publish_failed", "err", err)
	}
	b.client.Disconnect(disconnectMS)
}

func (b *Bridge) onConnect() {
	b.log.Infow("mqtt_connected", "set_topic", b.topics.Set)
	if token := b.client.Subscribe(b.topics.Set, b.qos, b.handleSet); token.Wait() && token.Error() != nil {
		b.log.Errorw("mqtt_subscribe_failed", "topic", b.topics.Set, "err", token.Error())
	}

	// the broker may still hold the last will from a previous session
	b.mu.Lock()
	available := b.available
	b.mu.Unlock()
	if available != nil {
		_ = b.PublishAvailability(*available)
	}
}

// PublishSnapshot publishes s as retained JSON on the state topic.
func (b *Bridge) PublishSnapshot(s models.Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return b.publish(b.topics.State, payload)
}

// PublishAvailability publishes online/offline retained on the availability topic.
func (b *Bridge) PublishAvailability(available bool) error {
	b.mu.Lock()
	b.available = &available
	b.mu.Unlock()

	payload := payloadOffline
	if available {
		payload = payloadOnline
	}
	return b.publish(b.topics.Availability, payload)
}

func (b *Bridge) publish(topic string, payload interface{}) error {
	token := b.client.Publish(topic, b.qos, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: %s", errPublishTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// handleSet decodes a settings change and applies it.
func (b *Bridge) handleSet(_ paho.Client, msg paho.Message) {
	var p service.SettingsParams
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		b.log.Warnw("mqtt_set_bad_payload", "topic", msg.Topic(), "err", err)
		return
	}

	b.mu.Lock()
	parent := b.ctx
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(parent, applyTimeout)
	defer cancel()
	if err := b.controls.Apply(ctx, p); err != nil {
		b.log.Errorw("mqtt_set_failed", "err", err)
		return
	}
	b.log.Infow("mqtt_set_applied", "payload", string(msg.Payload()))
}
