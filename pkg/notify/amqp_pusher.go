package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultPushExchange = "carelink.push"

// AMQPPusher publishes push messages to a RabbitMQ exchange consumed by
// the delivery worker (FCM bridge). A failed publish counts as a failed
// delivery attempt; messages are not retried here.
type AMQPPusher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPusher connects to the broker and declares the push exchange.
func NewAMQPPusher(url, exchange string) (*AMQPPusher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("amqp url required")
	}
	if strings.TrimSpace(exchange) == "" {
		exchange = defaultPushExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare push exchange: %w", err)
	}
	return &AMQPPusher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Push publishes one message routed by notification type.
func (p *AMQPPusher) Push(ctx context.Context, msg Push) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push: %w", err)
	}
	routingKey := "push." + strings.ToLower(msg.Type)
	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	}); err != nil {
		return fmt.Errorf("publish push: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPusher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
