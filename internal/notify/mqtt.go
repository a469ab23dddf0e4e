package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ukydev/garage-logbook/internal/models"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher is the part of mqtt.Client the notifier needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// ConnectMQTT connects a client to broker.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return client, nil
}

// MQTTNotifier publishes reminders to {topic}/{vehicle_id} and alert batches
// to {topic}/{vehicle_id}/alerts.
type MQTTNotifier struct {
	client  Publisher
	topic   string
	timeout time.Duration
}

// NewMQTTNotifier creates a notifier publishing under topic.
func NewMQTTNotifier(client Publisher, topic string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: topic, timeout: 5 * time.Second}
}

// Notify publishes the reminder as JSON.
func (n *MQTTNotifier) Notify(ctx context.Context, r Reminder) error {
	return n.publish(ctx, n.topic+"/"+r.VehicleID, r)
}

// PublishAlerts publishes the alert batch as JSON. An empty batch goes out as
// [] so subscribers learn the vehicle has nothing pending.
func (n *MQTTNotifier) PublishAlerts(ctx context.Context, vehicleID string, alerts []models.Alert) error {
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return n.publish(ctx, n.topic+"/"+vehicleID+"/alerts", alerts)
}

func (n *MQTTNotifier) publish(ctx context.Context, topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal mqtt payload: %w", err)
	}
	token := n.client.Publish(topic, 1, false, payload)
	timeout := n.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish %s: %w", topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
