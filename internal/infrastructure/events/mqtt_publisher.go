// Package events publishes domain events to an MQTT broker.
package events

import (
	"context"
	"fmt"
	"strings"

	"aspire-wishlist/internal/domain/event"

	"github.com/goccy/go-json"
)

// publishClient is the part of pkg/mqtt.Client the publisher needs.
type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

type MQTTPublisher struct {
	client publishClient
	prefix string
	qos    byte
}

func NewMQTTPublisher(client publishClient, topicPrefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		prefix: strings.TrimRight(topicPrefix, "/"),
		qos:    qos,
	}
}

// Topic maps "user.registered" to "{prefix}/user/registered".
func (p *MQTTPublisher) Topic(t event.Type) string {
	topic := strings.ReplaceAll(string(t), ".", "/")
	if p.prefix == "" {
		return topic
	}
	return p.prefix + "/" + topic
}

func (p *MQTTPublisher) Publish(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", e.Type, err)
	}

	if err := p.client.Publish(p.Topic(e.Type), p.qos, false, payload); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.Type, err)
	}
	return nil
}
