package telemetry

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"thermal_regulator/internal/logger"
	"thermal_regulator/internal/models"
)

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Topic          string // snapshots go here; "<Topic>/status" carries online/offline
	ConnectTimeout time.Duration
}

// MQTTPublisher publishes snapshots to a broker. It counts as connected only while the broker
// session is up.
type MQTTPublisher struct {
	client paho.Client
	topic  string
	log    *logger.Logger
}

// NewMQTTPublisher connects to the broker. The connect wait is bounded by cfg.ConnectTimeout;
// on timeout the client keeps retrying in the background and the publisher is returned anyway.
func NewMQTTPublisher(cfg MQTTConfig, log *logger.Logger) (*MQTTPublisher, error) {
	statusTopic := cfg.Topic + "/status"
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(statusTopic, "offline", 1, true).
		SetOnConnectHandler(func(c paho.Client) {
			c.Publish(statusTopic, 1, true, "online")
			log.Infow("mqtt_connected", "broker", cfg.Broker)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnw("mqtt_connection_lost", "err", err)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		log.Warnw("mqtt_connect_pending", "broker", cfg.Broker, "timeout", cfg.ConnectTimeout)
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &MQTTPublisher{client: client, topic: cfg.Topic, log: log}, nil
}

func (p *MQTTPublisher) Connected() bool { return p.client.IsConnected() }

// Notify queues the snapshot for publishing and returns without waiting for the broker.
func (p *MQTTPublisher) Notify(s models.ControllerSnapshot) error {
	payload, err := FormatPayload(s)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	token := p.client.Publish(p.topic, 0, false, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			p.log.Warnw("mqtt_publish_failed", "err", token.Error())
		}
	}()
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
