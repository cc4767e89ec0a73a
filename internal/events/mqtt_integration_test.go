//go:build integration

//nolint:misspell // Mosquitto is the official Eclipse project name
package events_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zancompute/zanconfig/internal/events"
	"github.com/zancompute/zanconfig/internal/logger"
	"github.com/zancompute/zanconfig/internal/testutil/containers"
)

var broker *containers.Mosquitto

func TestMain(m *testing.M) {
	ctx := context.Background() //nolint:gocritic // TestMain has no *testing.T for t.Context()

	var err error
	broker, err = containers.StartMosquitto(ctx, "")
	if err != nil {
		panic("failed to start MQTT broker: " + err.Error())
	}

	code := m.Run()

	_ = broker.Terminate(ctx)
	os.Exit(code)
}

// subscribe connects a plain paho client and delivers messages on topic to
// the returned channel.
func subscribe(t *testing.T, topic string) <-chan paho.Message {
	t.Helper()
	opts := paho.NewClientOptions().
		AddBroker(broker.BrokerURL()).
		SetClientID("sub-" + t.Name()).
		SetConnectTimeout(10 * time.Second)
	client := paho.NewClient(opts)

	err := containers.Retry(t.Context(), 5, 200*time.Millisecond, 2*time.Second, func() error {
		tok := client.Connect()
		tok.Wait()
		return tok.Error()
	})
	require.NoError(t, err, "subscriber failed to connect")
	t.Cleanup(func() { client.Disconnect(100) })

	msgs := make(chan paho.Message, 4)
	tok := client.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) { msgs <- msg })
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	return msgs
}

func TestMQTTPublisher_DeliversEvents(t *testing.T) {
	ctx := t.Context()
	msgs := subscribe(t, "zanconfig-it/clients/#")

	pub, err := events.NewMQTTPublisher(ctx, events.Config{
		Broker:         broker.BrokerURL(),
		ClientID:       "pub-" + t.Name(),
		TopicPrefix:    "zanconfig-it",
		QoS:            1,
		ConnectTimeout: 10 * time.Second,
		PublishTimeout: 5 * time.Second,
	}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(pub.Close)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := events.ClientChangeEvent{
		Action:     events.ActionUpdated,
		ClientID:   7,
		ClientKey:  "0b6c7c1e-1111-4a4a-9d9d-2e2e2e2e2e2e",
		ClientName: "Acme",
		At:         at,
	}
	require.NoError(t, pub.Publish(ctx, ev))

	select {
	case msg := <-msgs:
		assert.Equal(t, "zanconfig-it/clients/"+ev.ClientKey, msg.Topic())
		assert.False(t, msg.Retained())

		var got events.ClientChangeEvent
		require.NoError(t, json.Unmarshal(msg.Payload(), &got))
		assert.Equal(t, ev.Action, got.Action)
		assert.Equal(t, ev.ClientName, got.ClientName)
		assert.True(t, at.Equal(got.At))
	case <-time.After(10 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestMQTTPublisher_UnreachableBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	_, err := events.NewMQTTPublisher(ctx, events.Config{
		Broker:         "tcp://127.0.0.1:1",
		ClientID:       "unreachable",
		TopicPrefix:    "zanconfig-it",
		ConnectTimeout: time.Second,
	}, logger.NewNop())
	require.Error(t, err)
}
