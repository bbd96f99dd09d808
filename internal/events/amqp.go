package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type AMQPPublisher struct {
	channel        *amqp.Channel
	queue          string
	publishTimeout time.Duration
}

// DeclareQueue 声明持久化的事件队列
func DeclareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // 持久化
		false, // 不自动删除，避免没有消费者的时候队列被删掉
		false, // 不独占
		false, // 等待 RabbitMQ 确认
		nil,
	)
	return err
}

func NewAMQPPublisher(ch *amqp.Channel, queue string, publishTimeout time.Duration) *AMQPPublisher {
	return &AMQPPublisher{
		channel:        ch,
		queue:          queue,
		publishTimeout: publishTimeout,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
}
