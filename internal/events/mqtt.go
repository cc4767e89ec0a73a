package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/zancompute/zanconfig/internal/logger"
)

// Config holds the broker settings of an MQTTPublisher.
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            byte
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// MQTTPublisher publishes events as JSON to <prefix>/clients/<clientKey>.
type MQTTPublisher struct {
	client  paho.Client
	prefix  string
	qos     byte
	timeout time.Duration
	log     logger.Logger
}

// NewMQTTPublisher connects to the broker and returns a publisher. The paho
// client reconnects on its own after the initial connection succeeds.
func NewMQTTPublisher(ctx context.Context, cfg Config, log logger.Logger) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is not configured")
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectTimeout(orDefault(cfg.ConnectTimeout, 10*time.Second))
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	log = log.Module("events")
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn("mqtt connection lost", logger.String("broker", cfg.Broker), logger.Error(err))
	})

	client := paho.NewClient(opts)
	if err := waitToken(ctx, client.Connect(), orDefault(cfg.ConnectTimeout, 10*time.Second)); err != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", cfg.Broker, err)
	}
	log.Info("connected to mqtt broker", logger.String("broker", cfg.Broker))
	return newMQTTPublisher(client, cfg, log), nil
}

func newMQTTPublisher(client paho.Client, cfg Config, log logger.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client:  client,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:     cfg.QoS,
		timeout: orDefault(cfg.PublishTimeout, 5*time.Second),
		log:     log,
	}
}

// Topic returns the topic an event for clientKey is published to.
func (p *MQTTPublisher) Topic(clientKey string) string {
	return p.prefix + "/clients/" + clientKey
}

// Publish sends ev without retain.
func (p *MQTTPublisher) Publish(ctx context.Context, ev ClientChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("mqtt client is not connected")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Action, err)
	}
	topic := p.Topic(ev.ClientKey)
	if err := waitToken(ctx, p.client.Publish(topic, p.qos, false, payload), p.timeout); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	p.log.Debug("published client event",
		logger.String("topic", topic),
		logger.String("action", string(ev.Action)))
	return nil
}

// Close disconnects, allowing 250ms for in-flight messages.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// waitToken waits for a paho token, the timeout, or ctx, whichever is first.
func waitToken(ctx context.Context, token paho.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
